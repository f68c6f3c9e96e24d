package service

import (
	"context"
	"time"

	"stagepass/internal/errors"
	"stagepass/internal/models"
	"stagepass/internal/repository"
	"stagepass/internal/session"
)

// ReportService serves the read-only listing and reporting operations.
// Nothing here mutates state.
type ReportService struct {
	repos *repository.Repositories
}

func NewReportService(repos *repository.Repositories) *ReportService {
	return &ReportService{repos: repos}
}

// ListEvents filters the event catalogue by role and explicit flags:
// active-only, ownership (providers), date-window membership and consumer
// preference matching. Events whose every performance is filtered out by a
// date or preference filter are dropped from the listing.
func (s *ReportService) ListEvents(ctx context.Context, sess *session.Session, filter *models.EventFilter) (models.ListEventsResponse, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}
	user := s.repos.Users.GetByEmail(sess.Email)
	if user == nil {
		return nil, errors.ErrUnauthenticated
	}

	events := s.repos.Events.List()
	if filter.MineOnly && user.Role == models.RoleProvider {
		events = s.repos.Events.ListByOrganiser(user.Email)
	}

	var prefs *models.Preferences
	if filter.MatchPreferences && user.Role == models.RoleConsumer {
		prefs = user.Preferences
	}

	var result models.ListEventsResponse
	for _, event := range events {
		if filter.ActiveOnly && event.Status != models.EventActive {
			continue
		}

		performances := event.Performances
		if filter.Date != nil || prefs != nil {
			performances = filterPerformances(event.Performances, filter, prefs)
			if len(performances) == 0 {
				continue
			}
		}

		item := models.ListEventsResponseItem{
			ID:           event.ID,
			Title:        event.Title,
			Type:         event.Type,
			Status:       event.Status,
			Ticketed:     event.Ticketed,
			Performances: performances,
		}
		if event.Ticketed {
			item.TicketCount = event.TicketCount
			item.OriginalPrice = event.OriginalPrice
			item.EffectivePrice = event.EffectivePrice()
		}
		result = append(result, item)
	}
	return result, nil
}

func filterPerformances(performances []*models.Performance, filter *models.EventFilter, prefs *models.Preferences) []*models.Performance {
	var dayStart, dayEnd time.Time
	if filter.Date != nil {
		d := *filter.Date
		dayStart = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		dayEnd = dayStart.AddDate(0, 0, 1)
	}

	var kept []*models.Performance
	for _, p := range performances {
		// keep performances whose window overlaps the requested day
		if filter.Date != nil && (!p.Start.Before(dayEnd) || !p.End.After(dayStart)) {
			continue
		}
		if !p.MatchesPreferences(prefs) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// TicketUtilization builds the government's report: per ticketed event, how
// many tickets are sold to active bookings and the revenue at the price
// those bookings actually paid.
func (s *ReportService) TicketUtilization(ctx context.Context, sess *session.Session) (models.UtilizationReport, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}
	user := s.repos.Users.GetByEmail(sess.Email)
	if user == nil {
		return nil, errors.ErrUnauthenticated
	}
	if user.Role != models.RoleGovernment {
		return nil, errors.ErrForbidden
	}

	var report models.UtilizationReport
	for _, event := range s.repos.Events.List() {
		if !event.Ticketed {
			continue
		}

		sold := 0
		revenue := 0.0
		for _, booking := range s.repos.Bookings.ListActiveByEvent(event.ID) {
			sold += booking.Quantity
			revenue += booking.AmountPaid
		}

		item := models.UtilizationReportItem{
			EventID:      event.ID,
			Title:        event.Title,
			TotalTickets: event.TicketCount,
			TicketsSold:  sold,
			Revenue:      revenue,
		}
		if event.TicketCount > 0 {
			item.Utilization = float64(sold) / float64(event.TicketCount)
		}
		report = append(report, item)
	}
	return report, nil
}
