package hub

import "time"

// Observer receives room lifecycle and broadcast events. Calls are made
// while the hub or a room is locked, so implementations must be cheap
// and must not call back into the hub.
type Observer interface {
	RoomCreated(room string)
	RoomEvicted(room string)
	MessageAccepted(room string)
	ConnectionAdded(room string)
	SlotsPruned(room string, n int)
	Broadcast(room string, slots int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) RoomCreated(string)                   {}
func (nopObserver) RoomEvicted(string)                   {}
func (nopObserver) MessageAccepted(string)               {}
func (nopObserver) ConnectionAdded(string)               {}
func (nopObserver) SlotsPruned(string, int)              {}
func (nopObserver) Broadcast(string, int, time.Duration) {}
