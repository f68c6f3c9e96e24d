package models

import (
	"time"
)

// Role identifies what kind of actor a user account is. Every operation
// dispatches on the role explicitly instead of inspecting concrete types.
type Role string

const (
	RoleConsumer   Role = "CONSUMER"
	RoleProvider   Role = "PROVIDER"
	RoleGovernment Role = "GOVERNMENT"
)

// EventStatus is the lifecycle state of an event. CANCELLED is terminal.
type EventStatus string

const (
	EventActive    EventStatus = "ACTIVE"
	EventCancelled EventStatus = "CANCELLED"
)

// BookingStatus is the lifecycle state of a booking. Both cancelled states
// are terminal; a booking never moves backwards.
type BookingStatus string

const (
	BookingActive              BookingStatus = "ACTIVE"
	BookingCancelledByConsumer BookingStatus = "CANCELLEDBYCONSUMER"
	BookingCancelledByProvider BookingStatus = "CANCELLEDBYPROVIDER"
)

// SponsorshipStatus is the lifecycle state of a sponsorship request.
// ACCEPTED and REJECTED are terminal.
type SponsorshipStatus string

const (
	SponsorshipPending  SponsorshipStatus = "PENDING"
	SponsorshipAccepted SponsorshipStatus = "ACCEPTED"
	SponsorshipRejected SponsorshipStatus = "REJECTED"
)

// SponsorshipState is the sponsorship position of a ticketed event.
type SponsorshipState string

const (
	SponsorshipNone      SponsorshipState = "NONE"
	SponsorshipRequested SponsorshipState = "PENDING"
	Sponsored            SponsorshipState = "SPONSORED"
)

// Preferences is a consumer's performance filter. Zero values mean the
// preference is not set; Max fields of 0 mean no limit.
type Preferences struct {
	SocialDistancing bool `json:"social_distancing"`
	AirFiltration    bool `json:"air_filtration"`
	OutdoorsOnly     bool `json:"outdoors_only"`
	MaxCapacity      int  `json:"max_capacity"`
	MaxVenueSize     int  `json:"max_venue_size"`
}

// User represents any account in the system. Email is the identity key and
// is globally unique across all roles. Role-specific fields are populated
// only for the matching role.
type User struct {
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	PaymentAccount string    `json:"payment_account"`
	Role           Role      `json:"role"`
	RegisteredAt   time.Time `json:"registered_at"`

	// Consumer fields
	Name        string       `json:"name,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`

	// Provider fields. (OrgName, OrgAddress) is globally unique among providers.
	OrgName        string   `json:"org_name,omitempty"`
	OrgAddress     string   `json:"org_address,omitempty"`
	MainRepName    string   `json:"main_rep_name,omitempty"`
	MainRepEmail   string   `json:"main_rep_email,omitempty"`
	OtherRepNames  []string `json:"other_rep_names,omitempty"`
	OtherRepEmails []string `json:"other_rep_emails,omitempty"`
}

// Event represents an event published by a provider. Ticketed events carry
// ticket economics; non-ticketed events never have bookings or refunds.
type Event struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Type           string           `json:"type"`
	OrganiserEmail string           `json:"organiser_email"`
	Status         EventStatus      `json:"status"`
	Ticketed       bool             `json:"ticketed"`
	TicketCount    int              `json:"ticket_count"`
	OriginalPrice  float64          `json:"original_price"`
	Sponsorship    SponsorshipState `json:"sponsorship"`
	SponsorPercent int              `json:"sponsor_percent"`
	SponsorAccount string           `json:"sponsor_account,omitempty"`
	Performances   []*Performance   `json:"performances"`
	CreatedAt      time.Time        `json:"created_at"`
}

// EffectivePrice is the per-ticket price consumers actually pay:
// original x (1 - percent/100) while sponsored, original otherwise.
func (e *Event) EffectivePrice() float64 {
	if e.Sponsorship == Sponsored {
		return e.OriginalPrice * (1 - float64(e.SponsorPercent)/100)
	}
	return e.OriginalPrice
}

// Performance is one scheduled occurrence of an event at a venue.
type Performance struct {
	ID               int64     `json:"id"`
	EventID          int64     `json:"event_id"`
	Venue            string    `json:"venue"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Performers       []string  `json:"performers"`
	SocialDistancing bool      `json:"social_distancing"`
	AirFiltration    bool      `json:"air_filtration"`
	Outdoors         bool      `json:"outdoors"`
	Capacity         int       `json:"capacity"`
	VenueSize        int       `json:"venue_size"`
}

// MatchesPreferences reports whether the performance satisfies a consumer's
// filter. A nil filter matches everything.
func (p *Performance) MatchesPreferences(prefs *Preferences) bool {
	if prefs == nil {
		return true
	}
	if prefs.SocialDistancing && !p.SocialDistancing {
		return false
	}
	if prefs.AirFiltration && !p.AirFiltration {
		return false
	}
	if prefs.OutdoorsOnly && !p.Outdoors {
		return false
	}
	if prefs.MaxCapacity > 0 && p.Capacity > prefs.MaxCapacity {
		return false
	}
	if prefs.MaxVenueSize > 0 && p.VenueSize > prefs.MaxVenueSize {
		return false
	}
	return true
}

// Booking links a consumer to one performance of a ticketed event.
type Booking struct {
	ID            int64         `json:"id"`
	EventID       int64         `json:"event_id"`
	PerformanceID int64         `json:"performance_id"`
	BookerEmail   string        `json:"booker_email"`
	Quantity      int           `json:"quantity"`
	AmountPaid    float64       `json:"amount_paid"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SponsorshipRequest asks the government to sponsor a ticketed event.
// Percent and SponsorAccount are set only on acceptance.
type SponsorshipRequest struct {
	ID             int64             `json:"id"`
	EventID        int64             `json:"event_id"`
	Status         SponsorshipStatus `json:"status"`
	Percent        int               `json:"percent"`
	SponsorAccount string            `json:"sponsor_account,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Transaction is a payment ledger entry as reported by the ledger.
type Transaction struct {
	Payer  string  `json:"payer"`
	Payee  string  `json:"payee"`
	Amount float64 `json:"amount"`
}
