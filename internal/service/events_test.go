package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagepass/internal/errors"
	"stagepass/internal/models"
)

func TestCreateEvent(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")

	t.Run("ticketed", func(t *testing.T) {
		resp, err := env.services.Events.Create(context.Background(), provider, &models.CreateEventRequest{
			Title:       "Summer Jazz",
			Type:        "concert",
			Ticketed:    true,
			NumTickets:  100,
			TicketPrice: 15.5,
		})
		require.NoError(t, err)
		assert.Nil(t, resp.SponsorshipRequestID)

		event := env.repos.Events.GetByID(resp.ID)
		require.NotNil(t, event)
		assert.Equal(t, models.EventActive, event.Status)
		assert.Equal(t, 100, event.TicketCount)
		assert.Equal(t, 15.5, event.OriginalPrice)
		assert.Equal(t, models.SponsorshipNone, event.Sponsorship)
	})

	t.Run("non-ticketed ignores ticket fields", func(t *testing.T) {
		resp, err := env.services.Events.Create(context.Background(), provider, &models.CreateEventRequest{
			Title: "Street Parade", Type: "parade",
		})
		require.NoError(t, err)

		event := env.repos.Events.GetByID(resp.ID)
		assert.False(t, event.Ticketed)
		assert.Zero(t, event.TicketCount)
	})

	t.Run("with sponsorship request", func(t *testing.T) {
		resp, err := env.services.Events.Create(context.Background(), provider, &models.CreateEventRequest{
			Title: "Opera Night", Type: "opera", Ticketed: true, NumTickets: 50, TicketPrice: 80,
			RequestSponsorship: true,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.SponsorshipRequestID)

		request := env.repos.Sponsorships.GetByID(*resp.SponsorshipRequestID)
		require.NotNil(t, request)
		assert.Equal(t, models.SponsorshipPending, request.Status)
		assert.Equal(t, models.SponsorshipRequested, env.repos.Events.GetByID(resp.ID).Sponsorship)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := env.services.Events.Create(context.Background(), provider, &models.CreateEventRequest{
			Title: "Bad", Type: "concert", Ticketed: true, NumTickets: 0, TicketPrice: 10,
		})
		assert.ErrorIs(t, err, errors.ErrValidation)

		_, err = env.services.Events.Create(context.Background(), provider, &models.CreateEventRequest{
			Title: "Bad", Type: "concert", Ticketed: true, NumTickets: 10, TicketPrice: 0,
		})
		assert.ErrorIs(t, err, errors.ErrValidation)
	})

	t.Run("consumer cannot create", func(t *testing.T) {
		consumer := env.addConsumer(t, "fan@example.com")
		_, err := env.services.Events.Create(context.Background(), consumer, &models.CreateEventRequest{
			Title: "Nope", Type: "concert",
		})
		assert.ErrorIs(t, err, errors.ErrForbidden)
	})
}

func TestAddPerformanceScheduleClash(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	other := env.addProvider(t, "org2@example.com")

	start := testBase.Add(48 * time.Hour)
	end := start.Add(2 * time.Hour)

	first, err := env.services.Events.Create(context.Background(), provider, &models.CreateEventRequest{
		Title: "Hamlet", Type: "theatre",
	})
	require.NoError(t, err)
	env.addPerformanceAt(t, provider, first.ID, start, end)

	// Titles are not unique; another provider can run an event called
	// Hamlet, but not at an identical (start, end).
	second, err := env.services.Events.Create(context.Background(), other, &models.CreateEventRequest{
		Title: "hamlet", Type: "theatre",
	})
	require.NoError(t, err)

	_, err = env.services.Events.AddPerformance(context.Background(), other, &models.AddPerformanceRequest{
		EventID: second.ID, Venue: "Other Hall", Start: start, End: end, Capacity: 100, VenueSize: 200,
	})
	assert.ErrorIs(t, err, errors.ErrScheduleClash)

	// A shifted slot or a different title is fine.
	env.addPerformanceAt(t, other, second.ID, start.Add(time.Hour), end.Add(time.Hour))

	unrelated, err := env.services.Events.Create(context.Background(), other, &models.CreateEventRequest{
		Title: "Macbeth", Type: "theatre",
	})
	require.NoError(t, err)
	env.addPerformanceAt(t, other, unrelated.ID, start, end)
}

func TestAddPerformanceValidation(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	other := env.addProvider(t, "org2@example.com")

	event, err := env.services.Events.Create(context.Background(), provider, &models.CreateEventRequest{
		Title: "Recital", Type: "concert",
	})
	require.NoError(t, err)

	start := testBase.Add(48 * time.Hour)

	cases := []struct {
		name string
		req  models.AddPerformanceRequest
		want error
	}{
		{"start after end", models.AddPerformanceRequest{EventID: event.ID, Venue: "Hall", Start: start, End: start.Add(-time.Hour), Capacity: 10, VenueSize: 20}, errors.ErrValidation},
		{"start equals end", models.AddPerformanceRequest{EventID: event.ID, Venue: "Hall", Start: start, End: start, Capacity: 10, VenueSize: 20}, errors.ErrValidation},
		{"zero capacity", models.AddPerformanceRequest{EventID: event.ID, Venue: "Hall", Start: start, End: start.Add(time.Hour), Capacity: 0, VenueSize: 20}, errors.ErrValidation},
		{"zero venue size", models.AddPerformanceRequest{EventID: event.ID, Venue: "Hall", Start: start, End: start.Add(time.Hour), Capacity: 10, VenueSize: 0}, errors.ErrValidation},
		{"blank venue", models.AddPerformanceRequest{EventID: event.ID, Venue: "  ", Start: start, End: start.Add(time.Hour), Capacity: 10, VenueSize: 20}, errors.ErrValidation},
		{"unknown event", models.AddPerformanceRequest{EventID: 999, Venue: "Hall", Start: start, End: start.Add(time.Hour), Capacity: 10, VenueSize: 20}, errors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.services.Events.AddPerformance(context.Background(), provider, &tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("not the organiser", func(t *testing.T) {
		_, err := env.services.Events.AddPerformance(context.Background(), other, &models.AddPerformanceRequest{
			EventID: event.ID, Venue: "Hall", Start: start, End: start.Add(time.Hour), Capacity: 10, VenueSize: 20,
		})
		assert.ErrorIs(t, err, errors.ErrForbidden)
	})
}

func TestCancelEventRefundsAtOriginalPrice(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	consumer := env.addConsumer(t, "fan@example.com")

	event := env.createTicketedEvent(t, provider, 10, 20.0, false)
	perfID := env.addPerformance(t, provider, event.ID)

	booked, err := env.services.Bookings.Book(context.Background(), consumer, &models.BookEventRequest{
		EventID: event.ID, PerformanceID: perfID, NumTickets: 3,
	})
	require.NoError(t, err)

	resp, err := env.services.Events.Cancel(context.Background(), provider, &models.CancelEventRequest{
		EventID: event.ID, Message: "venue flooded",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.CancelledBookings)
	assert.Empty(t, resp.FailedRefunds)
	assert.False(t, resp.SponsorRefunded)

	require.Len(t, env.ledger.refunds, 1)
	assert.Equal(t, 60.0, env.ledger.refunds[0].amount)
	assert.Equal(t, "acct-fan@example.com", env.ledger.refunds[0].payee)

	assert.Equal(t, models.EventCancelled, env.repos.Events.GetByID(event.ID).Status)
	assert.Equal(t, models.BookingCancelledByProvider, env.repos.Bookings.GetByID(booked.ID).Status)
	assert.Equal(t, []int64{event.ID}, env.mirror.cancelledEvents)
}

func TestCancelSponsoredEventRefundsDiscountedPriceAndSponsor(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	consumer := env.addConsumer(t, "fan@example.com")
	government := env.addGovernment(t, "gov@example.com")

	event := env.createTicketedEvent(t, provider, 10, 20.0, true)
	perfID := env.addPerformance(t, provider, event.ID)

	_, err := env.services.Sponsorships.Respond(context.Background(), government, &models.RespondSponsorshipRequest{
		RequestID: *event.SponsorshipRequestID, Percent: 25,
	})
	require.NoError(t, err)

	_, err = env.services.Bookings.Book(context.Background(), consumer, &models.BookEventRequest{
		EventID: event.ID, PerformanceID: perfID, NumTickets: 2,
	})
	require.NoError(t, err)

	resp, err := env.services.Events.Cancel(context.Background(), provider, &models.CancelEventRequest{
		EventID: event.ID, Message: "cancelled",
	})
	require.NoError(t, err)
	assert.True(t, resp.SponsorRefunded)
	assert.Equal(t, 1, resp.CancelledBookings)

	// Sponsor gets back the ledger amount of the sponsorship payment
	// (10 x 20 x 25% = 50); the booker gets the discounted price they paid.
	require.Len(t, env.ledger.refunds, 2)
	assert.Equal(t, "acct-gov@example.com", env.ledger.refunds[0].payee)
	assert.Equal(t, 50.0, env.ledger.refunds[0].amount)
	assert.Equal(t, "acct-fan@example.com", env.ledger.refunds[1].payee)
	assert.Equal(t, 30.0, env.ledger.refunds[1].amount)
}

func TestCancelNonTicketedEventRefundsNothing(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")

	resp, err := env.services.Events.Create(context.Background(), provider, &models.CreateEventRequest{
		Title: "Free Parade", Type: "parade",
	})
	require.NoError(t, err)
	env.addPerformance(t, provider, resp.ID)

	cancelled, err := env.services.Events.Cancel(context.Background(), provider, &models.CancelEventRequest{
		EventID: resp.ID, Message: "rained out",
	})
	require.NoError(t, err)
	assert.Zero(t, cancelled.CancelledBookings)
	assert.Empty(t, env.ledger.refunds)
	assert.Equal(t, models.EventCancelled, env.repos.Events.GetByID(resp.ID).Status)
}

func TestCancelEventDeclinedRefundStillCancelsBooking(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	consumer := env.addConsumer(t, "fan@example.com")

	event := env.createTicketedEvent(t, provider, 10, 20.0, false)
	perfID := env.addPerformance(t, provider, event.ID)

	booked, err := env.services.Bookings.Book(context.Background(), consumer, &models.BookEventRequest{
		EventID: event.ID, PerformanceID: perfID, NumTickets: 1,
	})
	require.NoError(t, err)

	env.ledger.declineRefunds = true
	resp, err := env.services.Events.Cancel(context.Background(), provider, &models.CancelEventRequest{
		EventID: event.ID, Message: "cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.CancelledBookings)
	assert.Equal(t, []int64{booked.ID}, resp.FailedRefunds)
	assert.Equal(t, models.BookingCancelledByProvider, env.repos.Bookings.GetByID(booked.ID).Status)
}

func TestCancelEventGuards(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	other := env.addProvider(t, "org2@example.com")

	event := env.createTicketedEvent(t, provider, 10, 20.0, false)
	env.addPerformance(t, provider, event.ID)

	t.Run("blank message", func(t *testing.T) {
		_, err := env.services.Events.Cancel(context.Background(), provider, &models.CancelEventRequest{
			EventID: event.ID, Message: " ",
		})
		assert.ErrorIs(t, err, errors.ErrValidation)
	})

	t.Run("not the organiser", func(t *testing.T) {
		_, err := env.services.Events.Cancel(context.Background(), other, &models.CancelEventRequest{
			EventID: event.ID, Message: "cancelled",
		})
		assert.ErrorIs(t, err, errors.ErrForbidden)
	})

	t.Run("started performance blocks cancellation", func(t *testing.T) {
		started := env.createTicketedEvent(t, other, 5, 10.0, false)
		env.addPerformanceAt(t, other, started.ID, testBase.Add(-time.Hour), testBase.Add(time.Hour))
		_, err := env.services.Events.Cancel(context.Background(), other, &models.CancelEventRequest{
			EventID: started.ID, Message: "too late",
		})
		assert.ErrorIs(t, err, errors.ErrEventStarted)
		assert.Equal(t, models.EventActive, env.repos.Events.GetByID(started.ID).Status)
	})

	t.Run("cancelled event is terminal", func(t *testing.T) {
		_, err := env.services.Events.Cancel(context.Background(), provider, &models.CancelEventRequest{
			EventID: event.ID, Message: "first",
		})
		require.NoError(t, err)
		_, err = env.services.Events.Cancel(context.Background(), provider, &models.CancelEventRequest{
			EventID: event.ID, Message: "again",
		})
		assert.ErrorIs(t, err, errors.ErrEventNotActive)
	})
}
