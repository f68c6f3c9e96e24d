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

// cancellationWindow is the minimum lead time before a performance starts
// for a consumer cancellation. The bound is strict: a performance starting
// exactly 24 hours away is not cancellable.
const cancellationWindow = 24 * time.Hour

// BookingService handles the booking workflow: inventory-checked,
// pay-then-create booking and window-checked, refund-then-cancel
// cancellation.
type BookingService struct {
	repos      *repository.Repositories
	ledger     PaymentLedger
	mirror     ProviderMirror
	natsClient *messaging.NATSClient
	locks      *eventLockTable
	now        func() time.Time
}

func NewBookingService(repos *repository.Repositories, ledger PaymentLedger, mirror ProviderMirror, natsClient *messaging.NATSClient, locks *eventLockTable) *BookingService {
	return &BookingService{
		repos:      repos,
		ledger:     ledger,
		mirror:     mirror,
		natsClient: natsClient,
		locks:      locks,
		now:        time.Now,
	}
}

// Book books tickets for one performance of a ticketed event. The booking
// exists only after the mirror confirmed inventory and the ledger confirmed
// payment; any failed precondition aborts with no side effects.
func (s *BookingService) Book(ctx context.Context, sess *session.Session, req *models.BookEventRequest) (*models.BookEventResponse, error) {
	consumer, err := s.consumer(sess)
	if err != nil {
		return nil, err
	}

	if req.NumTickets < 1 {
		return nil, fmt.Errorf("%w: num_tickets must be at least 1", errors.ErrValidation)
	}

	// Everything from the status check to the create runs under the
	// per-event lock, so a concurrent cancellation cannot slip between
	// them and leave an active booking on a cancelled event.
	mu := s.locks.lock(req.EventID)
	mu.Lock()
	defer mu.Unlock()

	event := s.repos.Events.GetByID(req.EventID)
	if event == nil {
		return nil, errors.ErrNotFound
	}
	if !event.Ticketed {
		return nil, fmt.Errorf("%w: event is not ticketed", errors.ErrValidation)
	}
	if event.Status != models.EventActive {
		return nil, errors.ErrEventNotActive
	}

	perf := s.repos.Events.GetPerformance(req.EventID, req.PerformanceID)
	if perf == nil {
		return nil, errors.ErrNotFound
	}
	if !perf.End.After(s.now()) {
		return nil, errors.ErrPerformanceEnded
	}

	organiser := s.repos.Users.GetByEmail(event.OrganiserEmail)
	if organiser == nil {
		return nil, fmt.Errorf("organiser account missing for event %d", event.ID)
	}

	remaining, err := s.mirror.GetRemainingTickets(event.ID, perf.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query remaining tickets: %w", err)
	}
	if remaining < req.NumTickets {
		return nil, errors.ErrInsufficientTickets
	}

	amount := event.EffectivePrice() * float64(req.NumTickets)
	ok, err := s.ledger.ProcessPayment(consumer.PaymentAccount, organiser.PaymentAccount, amount)
	if err != nil {
		return nil, fmt.Errorf("payment failed: %w", err)
	}
	if !ok {
		return nil, errors.ErrPaymentDeclined
	}

	booking := s.repos.Bookings.Create(event.ID, perf.ID, consumer.Email, req.NumTickets, amount)

	if err := s.mirror.RecordNewBooking(event.ID, perf.ID, booking.ID, consumer.Name, consumer.Email, booking.Quantity); err != nil {
		logger.WithContext(ctx).Error("Failed to record new booking on mirror", "error", err, "booking_id", booking.ID)
	}

	if err := s.natsClient.Publish(models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:     booking.ID,
		EventID:       event.ID,
		PerformanceID: perf.ID,
		BookerEmail:   consumer.Email,
		Quantity:      booking.Quantity,
		AmountPaid:    booking.AmountPaid,
		Timestamp:     time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return &models.BookEventResponse{ID: booking.ID, AmountPaid: booking.AmountPaid}, nil
}

// Cancel cancels the caller's active booking. The refund must succeed
// before any state changes: a declined refund leaves the booking ACTIVE so
// a booking can never be cancelled without paying the consumer back.
func (s *BookingService) Cancel(ctx context.Context, sess *session.Session, req *models.CancelBookingRequest) error {
	consumer, err := s.consumer(sess)
	if err != nil {
		return err
	}

	booking := s.repos.Bookings.GetByID(req.BookingID)
	if booking == nil {
		return errors.ErrNotFound
	}
	if booking.BookerEmail != consumer.Email {
		return errors.ErrForbidden
	}

	// Shares the event lock with Book and the event cancellation fan-out,
	// so the same booking cannot be refunded twice.
	mu := s.locks.lock(booking.EventID)
	mu.Lock()
	defer mu.Unlock()

	booking = s.repos.Bookings.GetByID(req.BookingID)
	if booking.Status != models.BookingActive {
		return errors.ErrBookingNotActive
	}

	perf := s.repos.Events.GetPerformance(booking.EventID, booking.PerformanceID)
	if perf == nil {
		return errors.ErrNotFound
	}
	if !perf.Start.After(s.now().Add(cancellationWindow)) {
		return errors.ErrCancellationWindow
	}

	event := s.repos.Events.GetByID(booking.EventID)
	organiser := s.repos.Users.GetByEmail(event.OrganiserEmail)
	if organiser == nil {
		return fmt.Errorf("organiser account missing for event %d", event.ID)
	}

	ok, err := s.ledger.ProcessRefund(organiser.PaymentAccount, consumer.PaymentAccount, booking.AmountPaid)
	if err != nil {
		return fmt.Errorf("refund failed: %w", err)
	}
	if !ok {
		return errors.ErrRefundDeclined
	}

	if err := s.repos.Bookings.Cancel(booking.ID, models.BookingCancelledByConsumer); err != nil {
		return err
	}

	if err := s.mirror.CancelBooking(booking.ID); err != nil {
		logger.WithContext(ctx).Error("Failed to cancel booking on mirror", "error", err, "booking_id", booking.ID)
	}

	if err := s.natsClient.Publish(models.EventBookingCancelled, models.BookingCancelledEvent{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		Status:    models.BookingCancelledByConsumer,
		Refunded:  true,
		Timestamp: time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking cancelled event", "error", err, "booking_id", booking.ID)
	}

	return nil
}

// ListOwn lists the calling consumer's bookings, any status.
func (s *BookingService) ListOwn(ctx context.Context, sess *session.Session) (models.ListBookingsResponse, error) {
	consumer, err := s.consumer(sess)
	if err != nil {
		return nil, err
	}
	return toBookingItems(s.repos.Bookings.ListByBooker(consumer.Email)), nil
}

// ListForEvent lists every booking of one of the caller's events.
func (s *BookingService) ListForEvent(ctx context.Context, sess *session.Session, eventID int64) (models.ListBookingsResponse, error) {
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

	event := s.repos.Events.GetByID(eventID)
	if event == nil {
		return nil, errors.ErrNotFound
	}
	if event.OrganiserEmail != user.Email {
		return nil, errors.ErrForbidden
	}

	return toBookingItems(s.repos.Bookings.ListByEvent(eventID)), nil
}

func (s *BookingService) consumer(sess *session.Session) (*models.User, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}
	user := s.repos.Users.GetByEmail(sess.Email)
	if user == nil {
		return nil, errors.ErrUnauthenticated
	}
	if user.Role != models.RoleConsumer {
		return nil, errors.ErrForbidden
	}
	return user, nil
}

func toBookingItems(bookings []*models.Booking) models.ListBookingsResponse {
	result := make(models.ListBookingsResponse, len(bookings))
	for i, b := range bookings {
		result[i] = models.ListBookingsResponseItem{
			ID:            b.ID,
			EventID:       b.EventID,
			PerformanceID: b.PerformanceID,
			Quantity:      b.Quantity,
			AmountPaid:    b.AmountPaid,
			Status:        b.Status,
		}
	}
	return result
}
