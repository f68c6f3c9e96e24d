package repository

import (
	"strings"
	"sync"
	"time"

	"stagepass/internal/errors"
	"stagepass/internal/models"
)

// EventRepository stores events and their performances. It allocates
// monotonically increasing ids for both and serializes every
// read-modify-write on event state behind one mutex, including the
// title-wide schedule-clash scan. Read accessors hand out snapshots so
// callers never hold a pointer that a later write mutates under them.
type EventRepository struct {
	mu       sync.RWMutex
	eventSeq int64
	perfSeq  int64
	events   map[int64]*models.Event
	order    []int64
}

func NewEventRepository() *EventRepository {
	return &EventRepository{
		events: make(map[int64]*models.Event),
	}
}

// Create allocates a new event owned by the organiser. Ticket fields are
// zero for non-ticketed events.
func (r *EventRepository) Create(organiserEmail, title, eventType string, ticketed bool, ticketCount int, price float64) *models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.eventSeq++
	event := &models.Event{
		ID:             r.eventSeq,
		Title:          title,
		Type:           eventType,
		OrganiserEmail: organiserEmail,
		Status:         models.EventActive,
		Ticketed:       ticketed,
		TicketCount:    ticketCount,
		OriginalPrice:  price,
		Sponsorship:    models.SponsorshipNone,
		CreatedAt:      time.Now(),
	}
	r.events[event.ID] = event
	r.order = append(r.order, event.ID)
	return cloneEvent(event)
}

// cloneEvent copies an event together with its performance list. The
// performances themselves are immutable once added, so sharing their
// pointers is safe.
func cloneEvent(e *models.Event) *models.Event {
	clone := *e
	clone.Performances = append([]*models.Performance(nil), e.Performances...)
	return &clone
}

// GetByID returns a snapshot of the event, or nil when none exists.
func (r *EventRepository) GetByID(id int64) *models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event := r.events[id]
	if event == nil {
		return nil
	}
	return cloneEvent(event)
}

// GetPerformance returns one performance of an event, or nil.
func (r *EventRepository) GetPerformance(eventID, performanceID int64) *models.Performance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event := r.events[eventID]
	if event == nil {
		return nil
	}
	for _, p := range event.Performances {
		if p.ID == performanceID {
			return p
		}
	}
	return nil
}

// AddPerformance appends a performance to an event after checking that no
// performance of any event sharing the same title has an identical
// (start, end) pair. Titles are not unique identities, so this is a scan
// over all events, done under the write lock so concurrent adds cannot
// both pass the check.
func (r *EventRepository) AddPerformance(eventID int64, perf *models.Performance) (*models.Performance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event := r.events[eventID]
	if event == nil {
		return nil, errors.ErrNotFound
	}

	for _, other := range r.events {
		if !strings.EqualFold(other.Title, event.Title) {
			continue
		}
		for _, p := range other.Performances {
			if p.Start.Equal(perf.Start) && p.End.Equal(perf.End) {
				return nil, errors.ErrScheduleClash
			}
		}
	}

	r.perfSeq++
	perf.ID = r.perfSeq
	perf.EventID = eventID
	event.Performances = append(event.Performances, perf)
	return perf, nil
}

// Cancel transitions the event to CANCELLED. Cancellation is terminal.
func (r *EventRepository) Cancel(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event := r.events[id]
	if event == nil {
		return errors.ErrNotFound
	}
	if event.Status != models.EventActive {
		return errors.ErrEventNotActive
	}
	event.Status = models.EventCancelled
	return nil
}

// SetSponsorship records the sponsorship position of a ticketed event.
// Percent and account are meaningful only for the SPONSORED state.
func (r *EventRepository) SetSponsorship(id int64, state models.SponsorshipState, percent int, account string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event := r.events[id]
	if event == nil {
		return errors.ErrNotFound
	}
	event.Sponsorship = state
	event.SponsorPercent = percent
	event.SponsorAccount = account
	return nil
}

// List returns all events in creation order.
func (r *EventRepository) List() []*models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Event, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, cloneEvent(r.events[id]))
	}
	return result
}

// ListByOrganiser returns the organiser's events in creation order.
func (r *EventRepository) ListByOrganiser(email string) []*models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Event
	for _, id := range r.order {
		if strings.EqualFold(r.events[id].OrganiserEmail, email) {
			result = append(result, cloneEvent(r.events[id]))
		}
	}
	return result
}
