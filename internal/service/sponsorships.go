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

// SponsorshipService handles the government's decisions on pending
// sponsorship requests.
type SponsorshipService struct {
	repos      *repository.Repositories
	ledger     PaymentLedger
	mirror     ProviderMirror
	natsClient *messaging.NATSClient
}

func NewSponsorshipService(repos *repository.Repositories, ledger PaymentLedger, mirror ProviderMirror, natsClient *messaging.NATSClient) *SponsorshipService {
	return &SponsorshipService{
		repos:      repos,
		ledger:     ledger,
		mirror:     mirror,
		natsClient: natsClient,
	}
}

// Respond decides a pending request. Percent 0 rejects without any payment.
// A positive percent pays the organiser tickets x price x percent / 100; the
// request stays PENDING when the ledger declines, so the decision can be
// retried.
func (s *SponsorshipService) Respond(ctx context.Context, sess *session.Session, req *models.RespondSponsorshipRequest) (*models.RespondSponsorshipResponse, error) {
	government, err := s.government(sess)
	if err != nil {
		return nil, err
	}

	if req.Percent < 0 || req.Percent > 100 {
		return nil, fmt.Errorf("%w: percent must be between 0 and 100", errors.ErrValidation)
	}

	request := s.repos.Sponsorships.GetByID(req.RequestID)
	if request == nil {
		return nil, errors.ErrNotFound
	}
	if request.Status != models.SponsorshipPending {
		return nil, errors.ErrRequestDecided
	}

	event := s.repos.Events.GetByID(request.EventID)
	if event == nil {
		return nil, errors.ErrNotFound
	}
	organiser := s.repos.Users.GetByEmail(event.OrganiserEmail)
	if organiser == nil {
		return nil, fmt.Errorf("organiser account missing for event %d", event.ID)
	}

	if req.Percent == 0 {
		if err := s.repos.Sponsorships.Decide(request.ID, models.SponsorshipRejected, 0, ""); err != nil {
			return nil, err
		}
		if err := s.repos.Events.SetSponsorship(event.ID, models.SponsorshipNone, 0, ""); err != nil {
			return nil, err
		}

		if err := s.mirror.RecordSponsorshipRejection(event.ID); err != nil {
			logger.WithContext(ctx).Error("Failed to record sponsorship rejection on mirror", "error", err, "event_id", event.ID)
		}
		s.publishDecision(ctx, request, event, models.SponsorshipRejected, 0, 0)

		return &models.RespondSponsorshipResponse{Status: models.SponsorshipRejected}, nil
	}

	cost := float64(event.TicketCount) * event.OriginalPrice * float64(req.Percent) / 100
	ok, err := s.ledger.ProcessPayment(government.PaymentAccount, organiser.PaymentAccount, cost)
	if err != nil {
		return nil, fmt.Errorf("sponsorship payment failed: %w", err)
	}
	if !ok {
		return nil, errors.ErrPaymentDeclined
	}

	if err := s.repos.Sponsorships.Decide(request.ID, models.SponsorshipAccepted, req.Percent, government.PaymentAccount); err != nil {
		return nil, err
	}
	if err := s.repos.Events.SetSponsorship(event.ID, models.Sponsored, req.Percent, government.PaymentAccount); err != nil {
		return nil, err
	}

	if err := s.mirror.RecordSponsorshipAcceptance(event.ID, req.Percent); err != nil {
		logger.WithContext(ctx).Error("Failed to record sponsorship acceptance on mirror", "error", err, "event_id", event.ID)
	}
	s.publishDecision(ctx, request, event, models.SponsorshipAccepted, req.Percent, cost)

	return &models.RespondSponsorshipResponse{Status: models.SponsorshipAccepted, AmountPaid: cost}, nil
}

// List shows sponsorship requests: the government sees all of them, a
// provider sees only the requests of its own events.
func (s *SponsorshipService) List(ctx context.Context, sess *session.Session) (models.ListSponsorshipsResponse, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}
	user := s.repos.Users.GetByEmail(sess.Email)
	if user == nil {
		return nil, errors.ErrUnauthenticated
	}

	var result models.ListSponsorshipsResponse
	for _, req := range s.repos.Sponsorships.List() {
		switch user.Role {
		case models.RoleGovernment:
			// sees everything
		case models.RoleProvider:
			event := s.repos.Events.GetByID(req.EventID)
			if event == nil || event.OrganiserEmail != user.Email {
				continue
			}
		default:
			return nil, errors.ErrForbidden
		}

		result = append(result, models.ListSponsorshipsResponseItem{
			ID:      req.ID,
			EventID: req.EventID,
			Status:  req.Status,
			Percent: req.Percent,
		})
	}
	return result, nil
}

func (s *SponsorshipService) publishDecision(ctx context.Context, request *models.SponsorshipRequest, event *models.Event, status models.SponsorshipStatus, percent int, amount float64) {
	subject := models.EventSponsorshipRejected
	if status == models.SponsorshipAccepted {
		subject = models.EventSponsorshipAccepted
	}

	if err := s.natsClient.Publish(subject, models.SponsorshipDecidedEvent{
		RequestID:  request.ID,
		EventID:    event.ID,
		Status:     status,
		Percent:    percent,
		AmountPaid: amount,
		Timestamp:  time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish sponsorship decision event", "error", err, "request_id", request.ID)
	}
}

func (s *SponsorshipService) government(sess *session.Session) (*models.User, error) {
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
	return user, nil
}
