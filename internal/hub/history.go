package hub

import "github.com/devaloi/meowww/internal/domain"

// History is a bounded FIFO of messages. Once full, every push evicts
// the oldest message. It is not safe for concurrent use; the owning
// Room serializes access.
type History struct {
	capacity int
	msgs     []domain.Message
}

// NewHistory returns an empty history holding at most capacity messages.
// A negative capacity is treated as zero.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{capacity: capacity}
}

// Push appends m at the tail and evicts from the head until the
// history fits its capacity.
func (h *History) Push(m domain.Message) {
	h.msgs = append(h.msgs, m)
	h.trim()
}

// Extend appends all of other's messages after h's, oldest first.
func (h *History) Extend(other *History) {
	h.msgs = append(h.msgs, other.msgs...)
	h.trim()
}

// Len returns the number of retained messages.
func (h *History) Len() int { return len(h.msgs) }

// Capacity returns the maximum number of retained messages.
func (h *History) Capacity() int { return h.capacity }

// Snapshot returns a copy of the retained messages in insertion order.
func (h *History) Snapshot() []domain.Message {
	out := make([]domain.Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

func (h *History) trim() {
	over := len(h.msgs) - h.capacity
	if over <= 0 {
		return
	}
	// Clear evicted entries so the backing array does not pin them.
	for i := 0; i < over; i++ {
		h.msgs[i] = domain.Message{}
	}
	h.msgs = h.msgs[over:]
}
