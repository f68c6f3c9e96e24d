package service

import (
	"time"

	"stagepass/internal/messaging"
	"stagepass/internal/models"
	"stagepass/internal/repository"
	"stagepass/internal/session"
)

// PaymentLedger is the payment collaborator contract. A false result is a
// refusal (atomic on the ledger side); an error is a transport or timeout
// failure. Both abort the calling operation without partial mutation.
type PaymentLedger interface {
	ProcessPayment(payer, payee string, amount float64) (bool, error)
	ProcessRefund(payer, payee string, amount float64) (bool, error)
	FindTransactionsByPayer(account string) ([]models.Transaction, error)
}

// ProviderMirror is the organiser-side bookkeeping collaborator contract.
// Its remaining-ticket answer is authoritative for booking preconditions;
// record/cancel notifications are best effort.
type ProviderMirror interface {
	RecordNewEvent(eventID int64, title string, ticketCount int) error
	RecordNewPerformance(eventID, performanceID int64, start, end time.Time) error
	RecordNewBooking(eventID, performanceID, bookingID int64, bookerName, bookerEmail string, quantity int) error
	CancelBooking(bookingID int64) error
	CancelEvent(eventID int64, message string) error
	RecordSponsorshipAcceptance(eventID int64, percent int) error
	RecordSponsorshipRejection(eventID int64) error
	GetRemainingTickets(eventID, performanceID int64) (int, error)
}

type Services struct {
	Users        *UserService
	Events       *EventService
	Bookings     *BookingService
	Sponsorships *SponsorshipService
	Reports      *ReportService
}

func NewServices(repos *repository.Repositories, sessions *session.Store, ledger PaymentLedger, mirror ProviderMirror, natsClient *messaging.NATSClient) *Services {
	locks := &eventLockTable{}
	return &Services{
		Users:        NewUserService(repos.Users, sessions, natsClient),
		Events:       NewEventService(repos, ledger, mirror, natsClient, locks),
		Bookings:     NewBookingService(repos, ledger, mirror, natsClient, locks),
		Sponsorships: NewSponsorshipService(repos, ledger, mirror, natsClient),
		Reports:      NewReportService(repos),
	}
}
