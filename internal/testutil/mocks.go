package testutil

import (
	"errors"
	"sync"
	"time"

	"github.com/devaloi/meowww/internal/domain"
)

// ErrSendFailed is returned by a MockEndpoint configured to fail.
var ErrSendFailed = errors.New("mock endpoint: send failed")

// MockEndpoint implements hub.Endpoint for testing.
type MockEndpoint struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

// NewMockEndpoint creates an endpoint that accepts every send.
func NewMockEndpoint() *MockEndpoint {
	return &MockEndpoint{}
}

// NewFailingEndpoint creates an endpoint whose sends always fail.
func NewFailingEndpoint() *MockEndpoint {
	return &MockEndpoint{fail: true}
}

// Send records a frame, or fails if the endpoint is set to fail.
func (m *MockEndpoint) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrSendFailed
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.frames = append(m.frames, cp)
	return nil
}

// SetFail switches the endpoint between accepting and failing sends.
func (m *MockEndpoint) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// Frames returns a copy of every frame received so far.
func (m *MockEndpoint) Frames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([][]byte, len(m.frames))
	copy(cp, m.frames)
	return cp
}

// Messages decodes the non-probe frames received so far.
func (m *MockEndpoint) Messages() []domain.Message {
	var out []domain.Message
	for _, f := range m.Frames() {
		if len(f) == 0 {
			continue
		}
		if msg, err := domain.DecodeMessage(f); err == nil {
			out = append(out, msg)
		}
	}
	return out
}

// MockStore implements store.Store for testing.
type MockStore struct {
	mu    sync.Mutex
	stats map[string]*domain.RoomStats
	err   error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{stats: make(map[string]*domain.RoomStats)}
}

// SetError makes every subsequent call fail with err.
func (s *MockStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MockStore) entry(room string, at time.Time) *domain.RoomStats {
	st, ok := s.stats[room]
	if !ok {
		st = &domain.RoomStats{Name: room}
		s.stats[room] = st
	}
	st.LastActive = at
	return st
}

// RecordMessage counts a message for room.
func (s *MockStore) RecordMessage(room string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entry(room, at).Messages++
	return nil
}

// RecordConnection counts a connection for room.
func (s *MockStore) RecordConnection(room string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entry(room, at).Connections++
	return nil
}

// Stats returns the recorded counters, in no particular order.
func (s *MockStore) Stats(limit int) ([]domain.RoomStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.RoomStats, 0, len(s.stats))
	for _, st := range s.stats {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, *st)
	}
	return out, nil
}

// Close is a no-op for the mock store.
func (s *MockStore) Close() error { return nil }
