package models

import "time"

// NATS subjects for domain events
const (
	EventUserRegistered       = "user.registered"
	EventEventCreated         = "event.created"
	EventPerformanceAdded     = "performance.added"
	EventEventCancelled       = "event.cancelled"
	EventBookingCreated       = "booking.created"
	EventBookingCancelled     = "booking.cancelled"
	EventSponsorshipRequested = "sponsorship.requested"
	EventSponsorshipAccepted  = "sponsorship.accepted"
	EventSponsorshipRejected  = "sponsorship.rejected"
)

// UserRegisteredEvent is published when an account is created
type UserRegisteredEvent struct {
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// EventCreatedEvent is published when a provider publishes an event
type EventCreatedEvent struct {
	EventID     int64     `json:"event_id"`
	Title       string    `json:"title"`
	Organiser   string    `json:"organiser"`
	Ticketed    bool      `json:"ticketed"`
	TicketCount int       `json:"ticket_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// PerformanceAddedEvent is published when a performance is scheduled
type PerformanceAddedEvent struct {
	EventID       int64     `json:"event_id"`
	PerformanceID int64     `json:"performance_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Timestamp     time.Time `json:"timestamp"`
}

// EventCancelledEvent is published when an organiser cancels an event
type EventCancelledEvent struct {
	EventID           int64     `json:"event_id"`
	Message           string    `json:"message"`
	CancelledBookings int       `json:"cancelled_bookings"`
	Timestamp         time.Time `json:"timestamp"`
}

// BookingCreatedEvent is published after payment succeeds and a booking exists
type BookingCreatedEvent struct {
	BookingID     int64     `json:"booking_id"`
	EventID       int64     `json:"event_id"`
	PerformanceID int64     `json:"performance_id"`
	BookerEmail   string    `json:"booker_email"`
	Quantity      int       `json:"quantity"`
	AmountPaid    float64   `json:"amount_paid"`
	Timestamp     time.Time `json:"timestamp"`
}

// BookingCancelledEvent is published when a booking is cancelled by either side
type BookingCancelledEvent struct {
	BookingID int64         `json:"booking_id"`
	EventID   int64         `json:"event_id"`
	Status    BookingStatus `json:"status"`
	Refunded  bool          `json:"refunded"`
	Timestamp time.Time     `json:"timestamp"`
}

// SponsorshipRequestedEvent is published when a ticketed event asks for sponsorship
type SponsorshipRequestedEvent struct {
	RequestID int64     `json:"request_id"`
	EventID   int64     `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

// SponsorshipDecidedEvent is published for both acceptance and rejection
type SponsorshipDecidedEvent struct {
	RequestID  int64             `json:"request_id"`
	EventID    int64             `json:"event_id"`
	Status     SponsorshipStatus `json:"status"`
	Percent    int               `json:"percent"`
	AmountPaid float64           `json:"amount_paid"`
	Timestamp  time.Time         `json:"timestamp"`
}
