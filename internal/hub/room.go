package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/devaloi/meowww/internal/domain"
)

// Op is an operation applied to a room by Mutate. It runs with the
// room's mutex held and must only touch the room through the receiver
// it is given.
type Op[T any] func(*Room) T

// AddMessage validates msg and, if it is not degenerate, broadcasts it
// to the room's slots and appends it to the history. The result reports
// whether the message was accepted.
func AddMessage(msg domain.Message) Op[bool] {
	return func(r *Room) bool { return r.addMessage(msg) }
}

// AddConnection registers a pending slot backed by h. The result is the
// new slot's ID.
func AddConnection(h *Handoff) Op[string] {
	return func(r *Room) string { return r.addConnection(h) }
}

// Probe broadcasts an empty payload to prune dead slots. The result is
// the number of surviving slots.
func Probe() Op[int] {
	return func(r *Room) int {
		r.broadcast(domain.Probe)
		return len(r.slots)
	}
}

// Room holds a bounded message history and the notification slots of
// one chat room.
type Room struct {
	name string

	mu      sync.Mutex
	history *History
	slots   []*Slot
	// dead is set under mu once the hub has evicted the room.
	dead bool

	// Mirrors of history and slot counts for lock-free summaries.
	nmsgs  atomic.Int64
	nslots atomic.Int64

	resolveTimeout time.Duration
	observer       Observer
	logger         *slog.Logger
}

// NewRoom creates an empty room. A zero resolveTimeout makes broadcasts
// wait indefinitely for pending slots.
func NewRoom(name string, capacity int, resolveTimeout time.Duration, o Observer, logger *slog.Logger) *Room {
	if o == nil {
		o = nopObserver{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Room{
		name:           name,
		history:        NewHistory(capacity),
		resolveTimeout: resolveTimeout,
		observer:       o,
		logger:         logger,
	}
}

// Name returns the room name.
func (r *Room) Name() string { return r.name }

// History returns the retained messages, oldest first.
func (r *Room) History() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Snapshot()
}

// ConnectionCount returns the number of slots, pending or connected.
func (r *Room) ConnectionCount() int {
	return int(r.nslots.Load())
}

// MessageCount returns the number of retained messages.
func (r *Room) MessageCount() int {
	return int(r.nmsgs.Load())
}

// WorthKeeping reports whether the room has any history or slots.
func (r *Room) WorthKeeping() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.worthKeeping()
}

func (r *Room) worthKeeping() bool {
	return r.history.Len() > 0 || len(r.slots) > 0
}

func (r *Room) summary() domain.Room {
	return domain.Room{
		Name:        r.name,
		Messages:    r.MessageCount(),
		Connections: r.ConnectionCount(),
	}
}

func (r *Room) addMessage(msg domain.Message) bool {
	m, ok := msg.Normalize()
	if !ok {
		return false
	}
	data, err := domain.Encode(m)
	if err != nil {
		r.logger.Error("message.encode", "room", r.name, "err", err)
		return false
	}
	r.broadcast(data)
	r.history.Push(m)
	r.nmsgs.Store(int64(r.history.Len()))
	r.observer.MessageAccepted(r.name)
	return true
}

func (r *Room) addConnection(h *Handoff) string {
	s := newPendingSlot(h)
	r.slots = append(r.slots, s)
	r.nslots.Store(int64(len(r.slots)))
	r.observer.ConnectionAdded(r.name)
	r.logger.Debug("slot.added", "room", r.name, "slot", s.id)
	return s.id
}

// broadcast sends data to every slot in order, resolving pending ones,
// and keeps only the slots that accepted it.
func (r *Room) broadcast(data []byte) {
	if len(r.slots) == 0 {
		return
	}
	start := time.Now()
	total := len(r.slots)
	kept := r.slots[:0]
	for _, s := range r.slots {
		if err := s.send(data, r.resolveTimeout); err != nil {
			r.logger.Debug("slot.pruned", "room", r.name, "slot", s.id, "err", err)
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < total; i++ {
		r.slots[i] = nil
	}
	r.slots = kept
	r.nslots.Store(int64(len(kept)))
	if pruned := total - len(kept); pruned > 0 {
		r.observer.SlotsPruned(r.name, pruned)
	}
	r.observer.Broadcast(r.name, total, time.Since(start))
}

// merge appends other's history and slots after r's. other must not be
// shared.
func (r *Room) merge(other *Room) {
	r.history.Extend(other.history)
	r.slots = append(r.slots, other.slots...)
	other.slots = nil
	r.nmsgs.Store(int64(r.history.Len()))
	r.nslots.Store(int64(len(r.slots)))
}
