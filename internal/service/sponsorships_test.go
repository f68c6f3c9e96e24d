package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagepass/internal/errors"
	"stagepass/internal/models"
)

func TestRespondSponsorshipAccept(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	government := env.addGovernment(t, "gov@example.com")

	event := env.createTicketedEvent(t, provider, 100, 12.0, true)

	resp, err := env.services.Sponsorships.Respond(context.Background(), government, &models.RespondSponsorshipRequest{
		RequestID: *event.SponsorshipRequestID,
		Percent:   30,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SponsorshipAccepted, resp.Status)
	assert.Equal(t, 360.0, resp.AmountPaid) // 100 x 12 x 30%

	require.Len(t, env.ledger.payments, 1)
	assert.Equal(t, "acct-gov@example.com", env.ledger.payments[0].payer)
	assert.Equal(t, "acct-org@example.com", env.ledger.payments[0].payee)
	assert.Equal(t, 360.0, env.ledger.payments[0].amount)

	stored := env.repos.Events.GetByID(event.ID)
	assert.Equal(t, models.Sponsored, stored.Sponsorship)
	assert.Equal(t, 30, stored.SponsorPercent)
	assert.Equal(t, "acct-gov@example.com", stored.SponsorAccount)
	assert.Equal(t, 8.4, stored.EffectivePrice())
}

func TestRespondSponsorshipRejectPaysNothing(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	government := env.addGovernment(t, "gov@example.com")

	event := env.createTicketedEvent(t, provider, 100, 12.0, true)

	resp, err := env.services.Sponsorships.Respond(context.Background(), government, &models.RespondSponsorshipRequest{
		RequestID: *event.SponsorshipRequestID,
		Percent:   0,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SponsorshipRejected, resp.Status)
	assert.Zero(t, resp.AmountPaid)
	assert.Empty(t, env.ledger.payments)

	stored := env.repos.Events.GetByID(event.ID)
	assert.Equal(t, models.SponsorshipNone, stored.Sponsorship)
	assert.Equal(t, 12.0, stored.EffectivePrice())
}

func TestRespondSponsorshipDeclinedPaymentStaysPending(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	government := env.addGovernment(t, "gov@example.com")

	event := env.createTicketedEvent(t, provider, 100, 12.0, true)
	env.ledger.declinePayments = true

	_, err := env.services.Sponsorships.Respond(context.Background(), government, &models.RespondSponsorshipRequest{
		RequestID: *event.SponsorshipRequestID,
		Percent:   30,
	})
	assert.ErrorIs(t, err, errors.ErrPaymentDeclined)

	// The request can be retried after a declined payment.
	request := env.repos.Sponsorships.GetByID(*event.SponsorshipRequestID)
	assert.Equal(t, models.SponsorshipPending, request.Status)

	env.ledger.declinePayments = false
	_, err = env.services.Sponsorships.Respond(context.Background(), government, &models.RespondSponsorshipRequest{
		RequestID: *event.SponsorshipRequestID,
		Percent:   30,
	})
	assert.NoError(t, err)
}

func TestRespondSponsorshipGuards(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	government := env.addGovernment(t, "gov@example.com")
	consumer := env.addConsumer(t, "fan@example.com")

	event := env.createTicketedEvent(t, provider, 100, 12.0, true)
	requestID := *event.SponsorshipRequestID

	t.Run("only the government decides", func(t *testing.T) {
		_, err := env.services.Sponsorships.Respond(context.Background(), provider, &models.RespondSponsorshipRequest{RequestID: requestID, Percent: 10})
		assert.ErrorIs(t, err, errors.ErrForbidden)
		_, err = env.services.Sponsorships.Respond(context.Background(), consumer, &models.RespondSponsorshipRequest{RequestID: requestID, Percent: 10})
		assert.ErrorIs(t, err, errors.ErrForbidden)
	})

	t.Run("percent out of range", func(t *testing.T) {
		_, err := env.services.Sponsorships.Respond(context.Background(), government, &models.RespondSponsorshipRequest{RequestID: requestID, Percent: 101})
		assert.ErrorIs(t, err, errors.ErrValidation)
		_, err = env.services.Sponsorships.Respond(context.Background(), government, &models.RespondSponsorshipRequest{RequestID: requestID, Percent: -1})
		assert.ErrorIs(t, err, errors.ErrValidation)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := env.services.Sponsorships.Respond(context.Background(), government, &models.RespondSponsorshipRequest{RequestID: 999, Percent: 10})
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("decided request is terminal", func(t *testing.T) {
		_, err := env.services.Sponsorships.Respond(context.Background(), government, &models.RespondSponsorshipRequest{RequestID: requestID, Percent: 10})
		require.NoError(t, err)
		_, err = env.services.Sponsorships.Respond(context.Background(), government, &models.RespondSponsorshipRequest{RequestID: requestID, Percent: 20})
		assert.ErrorIs(t, err, errors.ErrRequestDecided)
	})
}

func TestListSponsorships(t *testing.T) {
	env := newTestEnv(t)
	provider := env.addProvider(t, "org@example.com")
	other := env.addProvider(t, "org2@example.com")
	government := env.addGovernment(t, "gov@example.com")
	consumer := env.addConsumer(t, "fan@example.com")

	env.createTicketedEvent(t, provider, 10, 20.0, true)
	env.createTicketedEvent(t, other, 10, 20.0, true)

	all, err := env.services.Sponsorships.List(context.Background(), government)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := env.services.Sponsorships.List(context.Background(), provider)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, models.SponsorshipPending, own[0].Status)

	_, err = env.services.Sponsorships.List(context.Background(), consumer)
	assert.ErrorIs(t, err, errors.ErrForbidden)
}
