package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stagepass/internal/auth"
	"stagepass/internal/messaging"
	"stagepass/internal/models"
	"stagepass/internal/repository"
	"stagepass/internal/session"
)

// testBase is a fixed reference instant; services under test get a clock
// pinned to it so window checks are deterministic.
var testBase = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type ledgerCall struct {
	payer  string
	payee  string
	amount float64
}

// fakeLedger accepts everything by default and records successful payments
// as transactions, so FindTransactionsByPayer behaves like the real ledger.
type fakeLedger struct {
	mu              sync.Mutex
	payments        []ledgerCall
	refunds         []ledgerCall
	declinePayments bool
	declineRefunds  bool
	err             error
}

func (f *fakeLedger) ProcessPayment(payer, payee string, amount float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.declinePayments {
		return false, nil
	}
	f.payments = append(f.payments, ledgerCall{payer, payee, amount})
	return true, nil
}

func (f *fakeLedger) ProcessRefund(payer, payee string, amount float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.declineRefunds {
		return false, nil
	}
	f.refunds = append(f.refunds, ledgerCall{payer, payee, amount})
	return true, nil
}

func (f *fakeLedger) FindTransactionsByPayer(account string) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var result []models.Transaction
	for _, p := range f.payments {
		if p.payer == account {
			result = append(result, models.Transaction{Payer: p.payer, Payee: p.payee, Amount: p.amount})
		}
	}
	return result, nil
}

// fakeMirror reports generous inventory unless a test pins a figure.
type fakeMirror struct {
	mu                sync.Mutex
	remaining         map[int64]int
	remainingErr      error
	recordedBookings  int
	cancelledBookings []int64
	cancelledEvents   []int64
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{remaining: make(map[int64]int)}
}

func (f *fakeMirror) RecordNewEvent(eventID int64, title string, ticketCount int) error {
	return nil
}

func (f *fakeMirror) RecordNewPerformance(eventID, performanceID int64, start, end time.Time) error {
	return nil
}

func (f *fakeMirror) RecordNewBooking(eventID, performanceID, bookingID int64, bookerName, bookerEmail string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordedBookings++
	return nil
}

func (f *fakeMirror) CancelBooking(bookingID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelledBookings = append(f.cancelledBookings, bookingID)
	return nil
}

func (f *fakeMirror) CancelEvent(eventID int64, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelledEvents = append(f.cancelledEvents, eventID)
	return nil
}

func (f *fakeMirror) RecordSponsorshipAcceptance(eventID int64, percent int) error { return nil }

func (f *fakeMirror) RecordSponsorshipRejection(eventID int64) error { return nil }

func (f *fakeMirror) GetRemainingTickets(eventID, performanceID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.remainingErr != nil {
		return 0, f.remainingErr
	}
	if v, ok := f.remaining[performanceID]; ok {
		return v, nil
	}
	return 1_000_000, nil
}

type testEnv struct {
	repos    *repository.Repositories
	ledger   *fakeLedger
	mirror   *fakeMirror
	services *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos := repository.NewRepositories()
	ledger := &fakeLedger{}
	mirror := newFakeMirror()
	sessions := session.NewStore(session.Config{Secret: "test-secret"})

	svcs := NewServices(repos, sessions, ledger, mirror, &messaging.NATSClient{})
	svcs.Events.now = func() time.Time { return testBase }
	svcs.Bookings.now = func() time.Time { return testBase }

	return &testEnv{repos: repos, ledger: ledger, mirror: mirror, services: svcs}
}

func (e *testEnv) addUser(t *testing.T, user *models.User) *session.Session {
	t.Helper()

	if user.PasswordHash == "" {
		hash, err := auth.HashPassword("password123")
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	require.NoError(t, e.repos.Users.Create(user))
	return &session.Session{ID: "sid-" + user.Email, Email: user.Email, Role: user.Role}
}

func (e *testEnv) addConsumer(t *testing.T, email string) *session.Session {
	return e.addUser(t, &models.User{
		Email:          email,
		PaymentAccount: "acct-" + email,
		Role:           models.RoleConsumer,
		Name:           "Consumer " + email,
		Phone:          "555-0100",
	})
}

func (e *testEnv) addProvider(t *testing.T, email string) *session.Session {
	return e.addUser(t, &models.User{
		Email:          email,
		PaymentAccount: "acct-" + email,
		Role:           models.RoleProvider,
		OrgName:        "Org " + email,
		OrgAddress:     "1 Main St, " + email,
		MainRepName:    "Rep",
		MainRepEmail:   "rep-" + email,
	})
}

func (e *testEnv) addGovernment(t *testing.T, email string) *session.Session {
	return e.addUser(t, &models.User{
		Email:          email,
		PaymentAccount: "acct-" + email,
		Role:           models.RoleGovernment,
	})
}

// createTicketedEvent publishes an event with one performance starting well
// outside the cancellation window.
func (e *testEnv) createTicketedEvent(t *testing.T, sess *session.Session, tickets int, price float64, sponsorship bool) *models.CreateEventResponse {
	t.Helper()

	resp, err := e.services.Events.Create(context.Background(), sess, &models.CreateEventRequest{
		Title:              fmt.Sprintf("Event by %s", sess.Email),
		Type:               "concert",
		Ticketed:           true,
		NumTickets:         tickets,
		TicketPrice:        price,
		RequestSponsorship: sponsorship,
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) addPerformanceAt(t *testing.T, sess *session.Session, eventID int64, start, end time.Time) int64 {
	t.Helper()

	resp, err := e.services.Events.AddPerformance(context.Background(), sess, &models.AddPerformanceRequest{
		EventID:   eventID,
		Venue:     "Main Hall",
		Start:     start,
		End:       end,
		Capacity:  500,
		VenueSize: 1000,
	})
	require.NoError(t, err)
	return resp.ID
}

func (e *testEnv) addPerformance(t *testing.T, sess *session.Session, eventID int64) int64 {
	start := testBase.Add(72 * time.Hour)
	return e.addPerformanceAt(t, sess, eventID, start, start.Add(3*time.Hour))
}
