package models

import "time"

// RegisterConsumerRequest - register a consumer account
type RegisterConsumerRequest struct {
	Name           string       `json:"name" binding:"required"`
	Email          string       `json:"email" binding:"required,email"`
	Phone          string       `json:"phone" binding:"required"`
	Password       string       `json:"password" binding:"required"`
	PaymentAccount string       `json:"payment_account" binding:"required"`
	Preferences    *Preferences `json:"preferences,omitempty"`
}

// RegisterProviderRequest - register an entertainment provider account
type RegisterProviderRequest struct {
	OrgName        string   `json:"org_name" binding:"required"`
	OrgAddress     string   `json:"org_address" binding:"required"`
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required"`
	PaymentAccount string   `json:"payment_account" binding:"required"`
	MainRepName    string   `json:"main_rep_name" binding:"required"`
	MainRepEmail   string   `json:"main_rep_email" binding:"required,email"`
	OtherRepNames  []string `json:"other_rep_names,omitempty"`
	OtherRepEmails []string `json:"other_rep_emails,omitempty"`
}

// RegisterResponse - successful registration establishes a session
type RegisterResponse struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Token string `json:"token"`
}

// LoginRequest - authenticate with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the session token for subsequent operations
type LoginResponse struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// UpdateConsumerProfileRequest - overwrite a consumer profile in place.
// The old password must match; all new fields are required.
type UpdateConsumerProfileRequest struct {
	OldPassword       string       `json:"old_password" binding:"required"`
	NewName           string       `json:"new_name" binding:"required"`
	NewEmail          string       `json:"new_email" binding:"required,email"`
	NewPhone          string       `json:"new_phone" binding:"required"`
	NewPassword       string       `json:"new_password" binding:"required"`
	NewPaymentAccount string       `json:"new_payment_account" binding:"required"`
	Preferences       *Preferences `json:"preferences,omitempty"`
}

// UpdateProviderProfileRequest - overwrite a provider profile in place
type UpdateProviderProfileRequest struct {
	OldPassword       string   `json:"old_password" binding:"required"`
	NewEmail          string   `json:"new_email" binding:"required,email"`
	NewPassword       string   `json:"new_password" binding:"required"`
	NewPaymentAccount string   `json:"new_payment_account" binding:"required"`
	NewOrgName        string   `json:"new_org_name" binding:"required"`
	NewOrgAddress     string   `json:"new_org_address" binding:"required"`
	NewMainRepName    string   `json:"new_main_rep_name" binding:"required"`
	NewMainRepEmail   string   `json:"new_main_rep_email" binding:"required,email"`
	OtherRepNames     []string `json:"other_rep_names,omitempty"`
	OtherRepEmails    []string `json:"other_rep_emails,omitempty"`
}

// CreateEventRequest - publish a new event. Ticketed events carry ticket
// economics and may request government sponsorship at creation.
type CreateEventRequest struct {
	Title              string  `json:"title" binding:"required"`
	Type               string  `json:"type" binding:"required"`
	Ticketed           bool    `json:"ticketed"`
	NumTickets         int     `json:"num_tickets,omitempty"`
	TicketPrice        float64 `json:"ticket_price,omitempty"`
	RequestSponsorship bool    `json:"request_sponsorship,omitempty"`
}

// CreateEventResponse - response when an event is created
type CreateEventResponse struct {
	ID                   int64  `json:"id"`
	SponsorshipRequestID *int64 `json:"sponsorship_request_id,omitempty"`
}

// AddPerformanceRequest - schedule a performance under an event
type AddPerformanceRequest struct {
	EventID          int64     `json:"event_id" binding:"required"`
	Venue            string    `json:"venue" binding:"required"`
	Start            time.Time `json:"start" binding:"required"`
	End              time.Time `json:"end" binding:"required"`
	Performers       []string  `json:"performers,omitempty"`
	SocialDistancing bool      `json:"social_distancing"`
	AirFiltration    bool      `json:"air_filtration"`
	Outdoors         bool      `json:"outdoors"`
	Capacity         int       `json:"capacity" binding:"required"`
	VenueSize        int       `json:"venue_size" binding:"required"`
}

// AddPerformanceResponse - response when a performance is scheduled
type AddPerformanceResponse struct {
	ID int64 `json:"id"`
}

// CancelEventRequest - cancel an event with a message to bookers
type CancelEventRequest struct {
	EventID int64  `json:"event_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// CancelEventResponse reports the refund fan-out outcome. FailedRefunds
// lists bookings whose refund the ledger declined; they are still cancelled.
type CancelEventResponse struct {
	CancelledBookings int     `json:"cancelled_bookings"`
	FailedRefunds     []int64 `json:"failed_refunds,omitempty"`
	SponsorRefunded   bool    `json:"sponsor_refunded"`
}

// BookEventRequest - book tickets for one performance of a ticketed event
type BookEventRequest struct {
	EventID       int64 `json:"event_id" binding:"required"`
	PerformanceID int64 `json:"performance_id" binding:"required"`
	NumTickets    int   `json:"num_tickets" binding:"required"`
}

// BookEventResponse - response when a booking is created
type BookEventResponse struct {
	ID         int64   `json:"id"`
	AmountPaid float64 `json:"amount_paid"`
}

// CancelBookingRequest - cancel an active booking
type CancelBookingRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

// RespondSponsorshipRequest - government decision on a pending request.
// Percent 0 rejects; 1-100 accepts and pays the organiser.
type RespondSponsorshipRequest struct {
	RequestID int64 `json:"request_id" binding:"required"`
	Percent   int   `json:"percent"`
}

// RespondSponsorshipResponse - response to a sponsorship decision
type RespondSponsorshipResponse struct {
	Status     SponsorshipStatus `json:"status"`
	AmountPaid float64           `json:"amount_paid"`
}

// EventFilter - listing filters; zero values apply no filtering
type EventFilter struct {
	ActiveOnly       bool
	MineOnly         bool
	Date             *time.Time
	MatchPreferences bool
}

// ListEventsResponseItem - one event in a listing
type ListEventsResponseItem struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Type           string         `json:"type"`
	Status         EventStatus    `json:"status"`
	Ticketed       bool           `json:"ticketed"`
	TicketCount    int            `json:"ticket_count,omitempty"`
	OriginalPrice  float64        `json:"original_price,omitempty"`
	EffectivePrice float64        `json:"effective_price,omitempty"`
	Performances   []*Performance `json:"performances,omitempty"`
}

// ListEventsResponse - list of events
type ListEventsResponse []ListEventsResponseItem

// ListBookingsResponseItem - one booking in a listing
type ListBookingsResponseItem struct {
	ID            int64         `json:"id"`
	EventID       int64         `json:"event_id"`
	PerformanceID int64         `json:"performance_id"`
	Quantity      int           `json:"quantity"`
	AmountPaid    float64       `json:"amount_paid"`
	Status        BookingStatus `json:"status"`
}

// ListBookingsResponse - list of bookings
type ListBookingsResponse []ListBookingsResponseItem

// ListSponsorshipsResponseItem - one sponsorship request in a listing
type ListSponsorshipsResponseItem struct {
	ID      int64             `json:"id"`
	EventID int64             `json:"event_id"`
	Status  SponsorshipStatus `json:"status"`
	Percent int               `json:"percent,omitempty"`
}

// ListSponsorshipsResponse - list of sponsorship requests
type ListSponsorshipsResponse []ListSponsorshipsResponseItem

// UtilizationReportItem - ticket utilization for one ticketed event
type UtilizationReportItem struct {
	EventID      int64   `json:"event_id"`
	Title        string  `json:"title"`
	TotalTickets int     `json:"total_tickets"`
	TicketsSold  int     `json:"tickets_sold"`
	Revenue      float64 `json:"revenue"`
	Utilization  float64 `json:"utilization"`
}

// UtilizationReport - government ticket-utilization report
type UtilizationReport []UtilizationReportItem
