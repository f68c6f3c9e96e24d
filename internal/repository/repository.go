package repository

// Repositories aggregates the in-memory state stores. Each repository owns
// entity creation (id allocation) and lookup for its identity domain.
type Repositories struct {
	Users        *UserRepository
	Events       *EventRepository
	Bookings     *BookingRepository
	Sponsorships *SponsorshipRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Users:        NewUserRepository(),
		Events:       NewEventRepository(),
		Bookings:     NewBookingRepository(),
		Sponsorships: NewSponsorshipRepository(),
	}
}
