package service

import "sync"

// eventLockTable hands out one mutex per event id. Booking and event
// cancellation share it: a booking's check-inventory-then-create and a
// cancellation's refund fan-out must never interleave on the same event,
// or a booking could land on a cancelled event after its refunds ran.
type eventLockTable struct {
	locks sync.Map // event id -> *sync.Mutex
}

func (t *eventLockTable) lock(eventID int64) *sync.Mutex {
	mu, _ := t.locks.LoadOrStore(eventID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
