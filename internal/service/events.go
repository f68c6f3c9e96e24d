package service

import (
	"context"
	"fmt"
	"time"

	"stagepass/internal/errors"
	"stagepass/internal/logger"
	"stagepass/internal/messaging"
	"stagepass/internal/models"
	"stagepass/internal/repository"
	"stagepass/internal/session"
)

// EventService handles event publication, performance scheduling and event
// cancellation with its refund fan-out.
type EventService struct {
	repos      *repository.Repositories
	ledger     PaymentLedger
	mirror     ProviderMirror
	natsClient *messaging.NATSClient
	locks      *eventLockTable
	now        func() time.Time
}

func NewEventService(repos *repository.Repositories, ledger PaymentLedger, mirror ProviderMirror, natsClient *messaging.NATSClient, locks *eventLockTable) *EventService {
	return &EventService{
		repos:      repos,
		ledger:     ledger,
		mirror:     mirror,
		natsClient: natsClient,
		locks:      locks,
		now:        time.Now,
	}
}

// Create publishes a new event owned by the calling provider. Ticketed
// events may enqueue a sponsorship request at the same time.
func (s *EventService) Create(ctx context.Context, sess *session.Session, req *models.CreateEventRequest) (*models.CreateEventResponse, error) {
	organiser, err := s.organiser(sess)
	if err != nil {
		return nil, err
	}

	if err := requireNonEmpty(map[string]string{"title": req.Title, "type": req.Type}); err != nil {
		return nil, err
	}
	if req.Ticketed {
		if req.NumTickets < 1 {
			return nil, fmt.Errorf("%w: num_tickets must be at least 1", errors.ErrValidation)
		}
		if req.TicketPrice <= 0 {
			return nil, fmt.Errorf("%w: ticket_price must be positive", errors.ErrValidation)
		}
	}

	ticketCount := 0
	price := 0.0
	if req.Ticketed {
		ticketCount = req.NumTickets
		price = req.TicketPrice
	}

	event := s.repos.Events.Create(organiser.Email, req.Title, req.Type, req.Ticketed, ticketCount, price)

	if err := s.mirror.RecordNewEvent(event.ID, event.Title, event.TicketCount); err != nil {
		logger.WithContext(ctx).Error("Failed to record new event on mirror", "error", err, "event_id", event.ID)
	}

	resp := &models.CreateEventResponse{ID: event.ID}

	if req.Ticketed && req.RequestSponsorship {
		request := s.repos.Sponsorships.Create(event.ID)
		if err := s.repos.Events.SetSponsorship(event.ID, models.SponsorshipRequested, 0, ""); err != nil {
			return nil, err
		}
		resp.SponsorshipRequestID = &request.ID

		if err := s.natsClient.Publish(models.EventSponsorshipRequested, models.SponsorshipRequestedEvent{
			RequestID: request.ID,
			EventID:   event.ID,
			Timestamp: time.Now(),
		}); err != nil {
			logger.WithContext(ctx).Error("Failed to publish sponsorship requested event", "error", err, "request_id", request.ID)
		}
	}

	if err := s.natsClient.Publish(models.EventEventCreated, models.EventCreatedEvent{
		EventID:     event.ID,
		Title:       event.Title,
		Organiser:   event.OrganiserEmail,
		Ticketed:    event.Ticketed,
		TicketCount: event.TicketCount,
		Timestamp:   time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event created event", "error", err, "event_id", event.ID)
	}

	return resp, nil
}

// AddPerformance schedules a performance under the caller's event. Each
// precondition failure is a distinct error; nothing is mutated on failure.
func (s *EventService) AddPerformance(ctx context.Context, sess *session.Session, req *models.AddPerformanceRequest) (*models.AddPerformanceResponse, error) {
	organiser, err := s.organiser(sess)
	if err != nil {
		return nil, err
	}

	if !req.Start.Before(req.End) {
		return nil, fmt.Errorf("%w: start must be before end", errors.ErrValidation)
	}
	if req.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", errors.ErrValidation)
	}
	if req.VenueSize < 1 {
		return nil, fmt.Errorf("%w: venue_size must be at least 1", errors.ErrValidation)
	}
	if err := requireNonEmpty(map[string]string{"venue": req.Venue}); err != nil {
		return nil, err
	}

	event := s.repos.Events.GetByID(req.EventID)
	if event == nil {
		return nil, errors.ErrNotFound
	}
	if event.OrganiserEmail != organiser.Email {
		return nil, errors.ErrForbidden
	}

	perf := &models.Performance{
		Venue:            req.Venue,
		Start:            req.Start,
		End:              req.End,
		Performers:       req.Performers,
		SocialDistancing: req.SocialDistancing,
		AirFiltration:    req.AirFiltration,
		Outdoors:         req.Outdoors,
		Capacity:         req.Capacity,
		VenueSize:        req.VenueSize,
	}

	// The clash scan runs under the event repository's write lock so two
	// concurrent adds cannot both pass it.
	perf, err = s.repos.Events.AddPerformance(event.ID, perf)
	if err != nil {
		return nil, err
	}

	if err := s.mirror.RecordNewPerformance(event.ID, perf.ID, perf.Start, perf.End); err != nil {
		logger.WithContext(ctx).Error("Failed to record new performance on mirror", "error", err,
			"event_id", event.ID, "performance_id", perf.ID)
	}

	if err := s.natsClient.Publish(models.EventPerformanceAdded, models.PerformanceAddedEvent{
		EventID:       event.ID,
		PerformanceID: perf.ID,
		Start:         perf.Start,
		End:           perf.End,
		Timestamp:     time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish performance added event", "error", err, "performance_id", perf.ID)
	}

	return &models.AddPerformanceResponse{ID: perf.ID}, nil
}

// Cancel cancels an event and fans out refunds. A single performance that
// has already started blocks cancellation entirely. Refunds are best effort:
// every active booking transitions to CANCELLEDBYPROVIDER even when its
// refund is declined; declined refunds are reported for out-of-band retry.
func (s *EventService) Cancel(ctx context.Context, sess *session.Session, req *models.CancelEventRequest) (*models.CancelEventResponse, error) {
	organiser, err := s.organiser(sess)
	if err != nil {
		return nil, err
	}

	if err := requireNonEmpty(map[string]string{"message": req.Message}); err != nil {
		return nil, err
	}

	// Held for the whole refund fan-out; bookings take the same lock, so
	// none can be created between the refunds and the status flip.
	mu := s.locks.lock(req.EventID)
	mu.Lock()
	defer mu.Unlock()

	event := s.repos.Events.GetByID(req.EventID)
	if event == nil {
		return nil, errors.ErrNotFound
	}
	if event.OrganiserEmail != organiser.Email {
		return nil, errors.ErrForbidden
	}
	if event.Status != models.EventActive {
		return nil, errors.ErrEventNotActive
	}

	now := s.now()
	for _, perf := range event.Performances {
		if perf.Start.Before(now) {
			return nil, errors.ErrEventStarted
		}
	}

	resp := &models.CancelEventResponse{}

	if event.Ticketed {
		refundPrice := event.OriginalPrice
		if event.Sponsorship == models.Sponsored {
			refundPrice = event.EffectivePrice()
			resp.SponsorRefunded = s.refundSponsor(ctx, event, organiser)
		}

		for _, booking := range s.repos.Bookings.ListActiveByEvent(event.ID) {
			refunded := s.refundBooking(ctx, booking, organiser, refundPrice)
			if !refunded {
				resp.FailedRefunds = append(resp.FailedRefunds, booking.ID)
			}

			if err := s.repos.Bookings.Cancel(booking.ID, models.BookingCancelledByProvider); err != nil {
				logger.WithContext(ctx).Error("Failed to cancel booking", "error", err, "booking_id", booking.ID)
				continue
			}
			resp.CancelledBookings++

			if err := s.mirror.CancelBooking(booking.ID); err != nil {
				logger.WithContext(ctx).Error("Failed to cancel booking on mirror", "error", err, "booking_id", booking.ID)
			}

			if err := s.natsClient.Publish(models.EventBookingCancelled, models.BookingCancelledEvent{
				BookingID: booking.ID,
				EventID:   event.ID,
				Status:    models.BookingCancelledByProvider,
				Refunded:  refunded,
				Timestamp: time.Now(),
			}); err != nil {
				logger.WithContext(ctx).Error("Failed to publish booking cancelled event", "error", err, "booking_id", booking.ID)
			}
		}
	}

	if err := s.repos.Events.Cancel(event.ID); err != nil {
		return nil, err
	}

	if err := s.mirror.CancelEvent(event.ID, req.Message); err != nil {
		logger.WithContext(ctx).Error("Failed to cancel event on mirror", "error", err, "event_id", event.ID)
	}

	if err := s.natsClient.Publish(models.EventEventCancelled, models.EventCancelledEvent{
		EventID:           event.ID,
		Message:           req.Message,
		CancelledBookings: resp.CancelledBookings,
		Timestamp:         time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event cancelled event", "error", err, "event_id", event.ID)
	}

	return resp, nil
}

// refundSponsor looks up the sponsor's payment to the organiser on the
// ledger and refunds that exact amount.
func (s *EventService) refundSponsor(ctx context.Context, event *models.Event, organiser *models.User) bool {
	transactions, err := s.ledger.FindTransactionsByPayer(event.SponsorAccount)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to look up sponsor transactions", "error", err, "event_id", event.ID)
		return false
	}

	for _, tx := range transactions {
		if tx.Payee != organiser.PaymentAccount {
			continue
		}
		ok, err := s.ledger.ProcessRefund(organiser.PaymentAccount, event.SponsorAccount, tx.Amount)
		if err != nil || !ok {
			logger.WithContext(ctx).Error("Sponsor refund declined", "error", err, "event_id", event.ID, "amount", tx.Amount)
			return false
		}
		return true
	}

	logger.WithContext(ctx).Error("No sponsor transaction found to refund", "event_id", event.ID, "sponsor", event.SponsorAccount)
	return false
}

func (s *EventService) refundBooking(ctx context.Context, booking *models.Booking, organiser *models.User, unitPrice float64) bool {
	booker := s.repos.Users.GetByEmail(booking.BookerEmail)
	if booker == nil {
		logger.WithContext(ctx).Error("Booker account missing for refund", "booking_id", booking.ID)
		return false
	}

	amount := unitPrice * float64(booking.Quantity)
	ok, err := s.ledger.ProcessRefund(organiser.PaymentAccount, booker.PaymentAccount, amount)
	if err != nil || !ok {
		logger.WithContext(ctx).Error("Booking refund declined", "error", err, "booking_id", booking.ID, "amount", amount)
		return false
	}
	return true
}

func (s *EventService) organiser(sess *session.Session) (*models.User, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}
	user := s.repos.Users.GetByEmail(sess.Email)
	if user == nil {
		return nil, errors.ErrUnauthenticated
	}
	if user.Role != models.RoleProvider {
		return nil, errors.ErrForbidden
	}
	return user, nil
}
