package hub

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Endpoint is the send side of a client's notification channel.
type Endpoint interface {
	Send(data []byte) error
}

var errUnresolved = errors.New("hub: notification endpoint never resolved")

// Handoff delivers an Endpoint exactly once, from the goroutine that
// completes the protocol upgrade to whichever broadcast first needs it.
type Handoff struct {
	mu   sync.Mutex
	done bool
	ch   chan Endpoint
}

// NewHandoff returns an unresolved handoff.
func NewHandoff() *Handoff {
	return &Handoff{ch: make(chan Endpoint, 1)}
}

// Resolve hands ep over. It reports false if the handoff already failed
// or was abandoned by a timed out waiter, in which case the caller still
// owns ep and should close it.
func (h *Handoff) Resolve(ep Endpoint) bool {
	if ep == nil {
		h.Fail()
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return false
	}
	h.done = true
	h.ch <- ep
	close(h.ch)
	return true
}

// Fail marks the handoff as never going to deliver. Calling Fail after
// Resolve is a no-op.
func (h *Handoff) Fail() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.done {
		h.done = true
		close(h.ch)
	}
}

// Wait blocks until the handoff resolves or fails. A positive timeout
// bounds the wait; on expiry the handoff is abandoned. Zero waits forever.
func (h *Handoff) Wait(timeout time.Duration) (Endpoint, bool) {
	if timeout <= 0 {
		ep, ok := <-h.ch
		return ep, ok
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case ep, ok := <-h.ch:
		return ep, ok
	case <-t.C:
	}
	h.Fail()
	// Resolve may have won the race against Fail.
	ep, ok := <-h.ch
	return ep, ok
}

type slotState int

const (
	slotPending slotState = iota
	slotConnected
)

// Slot is one client's notification channel inside a room. A pending
// slot becomes connected the first time a broadcast resolves its
// handoff. Slots that fail are dropped, never retried.
type Slot struct {
	id      string
	state   slotState
	handoff *Handoff
	ep      Endpoint
}

func newPendingSlot(h *Handoff) *Slot {
	return &Slot{id: uuid.NewString(), state: slotPending, handoff: h}
}

// ID returns the slot's identifier.
func (s *Slot) ID() string { return s.id }

// Connected reports whether the slot's endpoint has been resolved.
func (s *Slot) Connected() bool { return s.state == slotConnected }

func (s *Slot) send(data []byte, resolveTimeout time.Duration) error {
	if s.state == slotPending {
		ep, ok := s.handoff.Wait(resolveTimeout)
		if !ok {
			return errUnresolved
		}
		s.ep = ep
		s.state = slotConnected
		s.handoff = nil
	}
	return s.ep.Send(data)
}
