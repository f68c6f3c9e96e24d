package repository

import (
	"strings"
	"sync"
	"time"

	"stagepass/internal/errors"
	"stagepass/internal/models"
)

// BookingRepository stores bookings keyed by id. Bookings are never
// deleted; cancellation is a forward-only status transition. Read
// accessors return snapshots so a concurrent cancel cannot mutate a
// booking a caller is still reading.
type BookingRepository struct {
	mu    sync.RWMutex
	seq   int64
	byID  map[int64]*models.Booking
	order []int64
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		byID: make(map[int64]*models.Booking),
	}
}

// Create allocates a new ACTIVE booking.
func (r *BookingRepository) Create(eventID, performanceID int64, bookerEmail string, quantity int, amountPaid float64) *models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	booking := &models.Booking{
		ID:            r.seq,
		EventID:       eventID,
		PerformanceID: performanceID,
		BookerEmail:   bookerEmail,
		Quantity:      quantity,
		AmountPaid:    amountPaid,
		Status:        models.BookingActive,
		CreatedAt:     time.Now(),
	}
	r.byID[booking.ID] = booking
	r.order = append(r.order, booking.ID)
	return cloneBooking(booking)
}

func cloneBooking(b *models.Booking) *models.Booking {
	clone := *b
	return &clone
}

// GetByID returns a snapshot of the booking, or nil when none exists.
func (r *BookingRepository) GetByID(id int64) *models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking := r.byID[id]
	if booking == nil {
		return nil
	}
	return cloneBooking(booking)
}

// Cancel transitions an ACTIVE booking to the given cancelled status.
// Terminal bookings are left untouched.
func (r *BookingRepository) Cancel(id int64, status models.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking := r.byID[id]
	if booking == nil {
		return errors.ErrNotFound
	}
	if booking.Status != models.BookingActive {
		return errors.ErrBookingNotActive
	}
	booking.Status = status
	return nil
}

// ListByBooker returns the consumer's bookings in creation order.
func (r *BookingRepository) ListByBooker(email string) []*models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Booking
	for _, id := range r.order {
		if strings.EqualFold(r.byID[id].BookerEmail, email) {
			result = append(result, cloneBooking(r.byID[id]))
		}
	}
	return result
}

// ListByEvent returns every booking of an event, any status.
func (r *BookingRepository) ListByEvent(eventID int64) []*models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Booking
	for _, id := range r.order {
		if r.byID[id].EventID == eventID {
			result = append(result, cloneBooking(r.byID[id]))
		}
	}
	return result
}

// ListActiveByEvent returns the ACTIVE bookings of an event.
func (r *BookingRepository) ListActiveByEvent(eventID int64) []*models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Booking
	for _, id := range r.order {
		b := r.byID[id]
		if b.EventID == eventID && b.Status == models.BookingActive {
			result = append(result, cloneBooking(b))
		}
	}
	return result
}
