package hub

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/devaloi/meowww/internal/domain"
)

// Options configures a Hub.
type Options struct {
	// HistoryCapacity is the number of messages each room retains.
	HistoryCapacity int
	// ResolveTimeout bounds how long a broadcast waits for a pending
	// slot. Zero waits indefinitely.
	ResolveTimeout time.Duration
	// PingInterval is the period of the background probe sweep run by
	// Run. Zero disables the sweep.
	PingInterval time.Duration
	Observer     Observer
	Logger       *slog.Logger
}

// Hub maps room names to rooms. Rooms are created on the first mutation
// that names them and evicted once they hold neither messages nor slots.
//
// Locking: the table lock guards only the map. A room's own mutex
// serializes operations on it. The table lock may be held while taking
// a room mutex, never the other way round.
type Hub struct {
	rooms map[string]*Room
	mu    sync.RWMutex

	opts     Options
	observer Observer
	logger   *slog.Logger

	quit     chan struct{}
	stopOnce sync.Once
}

// New creates a new Hub.
func New(opts Options) *Hub {
	if opts.HistoryCapacity < 0 {
		opts.HistoryCapacity = 0
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		rooms:    make(map[string]*Room),
		opts:     opts,
		observer: opts.Observer,
		logger:   opts.Logger,
		quit:     make(chan struct{}),
	}
}

// Mutate applies op to the room called name, creating the room if it
// does not exist, and returns op's result.
//
// An existing room is mutated under its own mutex only. Otherwise op is
// applied to a fresh, unpublished room which is then published. If
// another caller published the same name in the meantime, the fresh
// room is merged into the existing one and the result computed against
// the fresh room is returned as is.
func Mutate[T any](h *Hub, name string, op Op[T]) T {
	for {
		r := h.lookup(name)
		if r == nil {
			break
		}
		r.mu.Lock()
		if r.dead {
			// Evicted between lookup and lock.
			r.mu.Unlock()
			continue
		}
		res := op(r)
		r.mu.Unlock()
		return res
	}

	fresh := h.newRoom(name)
	fresh.mu.Lock()
	res := op(fresh)
	fresh.mu.Unlock()
	h.publish(fresh)
	return res
}

// History returns a snapshot of the named room's history. It reports
// false if no such room exists; it never creates one.
func (h *Hub) History(name string) ([]domain.Message, bool) {
	r := h.lookup(name)
	if r == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dead {
		return nil, false
	}
	return r.history.Snapshot(), true
}

// Rooms returns a summary of every live room, sorted by name.
func (h *Hub) Rooms() []domain.Room {
	h.mu.RLock()
	rooms := make([]domain.Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r.summary())
	}
	h.mu.RUnlock()
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms
}

// Room returns a summary of the named room, or false if it does not exist.
func (h *Hub) Room(name string) (domain.Room, bool) {
	r := h.lookup(name)
	if r == nil {
		return domain.Room{}, false
	}
	return r.summary(), true
}

// Len returns the number of live rooms.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Run probes every room each PingInterval, pruning dead slots and
// evicting rooms left empty. It blocks until Stop is called.
func (h *Hub) Run() {
	if h.opts.PingInterval <= 0 {
		<-h.quit
		return
	}
	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.Sweep()
		case <-h.quit:
			return
		}
	}
}

// Stop signals Run to exit.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Sweep probes every room concurrently and evicts the ones that are no
// longer worth keeping. It returns the number of evicted rooms.
func (h *Hub) Sweep() int {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	var (
		wg      sync.WaitGroup
		evicted int
		emu     sync.Mutex
	)
	for _, r := range rooms {
		wg.Add(1)
		go func(r *Room) {
			defer wg.Done()
			r.mu.Lock()
			if r.dead {
				r.mu.Unlock()
				return
			}
			r.broadcast(domain.Probe)
			keep := r.worthKeeping()
			r.mu.Unlock()
			if !keep && h.evict(r) {
				emu.Lock()
				evicted++
				emu.Unlock()
			}
		}(r)
	}
	wg.Wait()
	return evicted
}

func (h *Hub) lookup(name string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[name]
}

func (h *Hub) newRoom(name string) *Room {
	return NewRoom(name, h.opts.HistoryCapacity, h.opts.ResolveTimeout, h.observer, h.logger)
}

// publish inserts fresh into the table, or merges it into a room that
// won the race for the same name.
func (h *Hub) publish(fresh *Room) {
	for {
		h.mu.Lock()
		existing, ok := h.rooms[fresh.name]
		if !ok {
			// fresh is still unshared, so an empty one is simply
			// never published.
			if !fresh.worthKeeping() {
				h.mu.Unlock()
				return
			}
			h.rooms[fresh.name] = fresh
			n := len(h.rooms)
			h.observer.RoomCreated(fresh.name)
			h.mu.Unlock()
			h.logger.Debug("room.created", "room", fresh.name, "rooms", n)
			return
		}
		h.mu.Unlock()

		existing.mu.Lock()
		if existing.dead {
			existing.mu.Unlock()
			continue
		}
		existing.merge(fresh)
		keep := existing.worthKeeping()
		existing.mu.Unlock()
		h.logger.Debug("room.merged", "room", fresh.name)
		if !keep {
			h.evict(existing)
		}
		return
	}
}

// evict removes r if it is still the published room for its name and is
// not worth keeping. A room that is busy being mutated is left alone.
func (h *Hub) evict(r *Room) bool {
	h.mu.Lock()
	if h.rooms[r.name] != r || !r.mu.TryLock() {
		h.mu.Unlock()
		return false
	}
	if r.worthKeeping() {
		r.mu.Unlock()
		h.mu.Unlock()
		return false
	}
	r.dead = true
	delete(h.rooms, r.name)
	n := len(h.rooms)
	h.observer.RoomEvicted(r.name)
	r.mu.Unlock()
	h.mu.Unlock()
	h.logger.Debug("room.evicted", "room", r.name, "rooms", n)
	return true
}
