package hub

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devaloi/meowww/internal/domain"
)

func msg(nick, content string) domain.Message {
	return domain.Message{Nickname: nick, Content: content}
}

func TestHistoryBound(t *testing.T) {
	t.Parallel()
	for _, capacity := range []int{0, 1, 2, 5, 10} {
		for n := 0; n <= 15; n++ {
			h := NewHistory(capacity)
			for i := 0; i < n; i++ {
				h.Push(msg("u", strconv.Itoa(i)))
			}

			want := min(n, capacity)
			require.Equal(t, want, h.Len(), "capacity=%d n=%d", capacity, n)

			got := h.Snapshot()
			for i, m := range got {
				assert.Equal(t, strconv.Itoa(n-want+i), m.Content, "capacity=%d n=%d", capacity, n)
			}
		}
	}
}

func TestHistoryEvictsOldestFirst(t *testing.T) {
	t.Parallel()
	h := NewHistory(2)
	h.Push(msg("a", "hi"))
	h.Push(msg("b", "yo"))
	h.Push(msg("c", "sup"))

	assert.Equal(t, []domain.Message{msg("b", "yo"), msg("c", "sup")}, h.Snapshot())
}

func TestHistoryExtend(t *testing.T) {
	t.Parallel()
	a := NewHistory(3)
	a.Push(msg("a", "1"))
	a.Push(msg("a", "2"))

	b := NewHistory(3)
	b.Push(msg("b", "3"))
	b.Push(msg("b", "4"))

	a.Extend(b)
	assert.Equal(t, []domain.Message{msg("a", "2"), msg("b", "3"), msg("b", "4")}, a.Snapshot())
}

func TestHistorySnapshotIsCopy(t *testing.T) {
	t.Parallel()
	h := NewHistory(2)
	h.Push(msg("a", "1"))
	snap := h.Snapshot()
	snap[0].Content = "changed"
	assert.Equal(t, "1", h.Snapshot()[0].Content)
}

func TestHistoryNegativeCapacity(t *testing.T) {
	t.Parallel()
	h := NewHistory(-1)
	h.Push(msg("a", "1"))
	assert.Equal(t, 0, h.Capacity())
	assert.Equal(t, 0, h.Len())
}
