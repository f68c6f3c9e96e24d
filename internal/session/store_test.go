package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagepass/internal/errors"
	"stagepass/internal/models"
)

func newTestStore() *Store {
	return NewStore(Config{Secret: "test-secret", TTL: time.Hour})
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore()

	token, err := store.Create(&models.User{Email: "fan@example.com", Role: models.RoleConsumer})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sess, err := store.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "fan@example.com", sess.Email)
	assert.Equal(t, models.RoleConsumer, sess.Role)
	assert.NotEmpty(t, sess.ID)
}

func TestStoreDeleteRevokesToken(t *testing.T) {
	store := newTestStore()

	token, err := store.Create(&models.User{Email: "fan@example.com", Role: models.RoleConsumer})
	require.NoError(t, err)
	sess, err := store.Resolve(token)
	require.NoError(t, err)

	require.NoError(t, store.Delete(sess.ID))

	// The signed token is still cryptographically valid but the session
	// behind it is gone.
	_, err = store.Resolve(token)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	assert.ErrorIs(t, store.Delete(sess.ID), errors.ErrUnauthenticated)
}

func TestStoreRejectsGarbage(t *testing.T) {
	store := newTestStore()

	_, err := store.Resolve("not-a-token")
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	// A token signed with a different secret.
	other := NewStore(Config{Secret: "other-secret", TTL: time.Hour})
	token, err := other.Create(&models.User{Email: "fan@example.com", Role: models.RoleConsumer})
	require.NoError(t, err)
	_, err = store.Resolve(token)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestStoreExpiry(t *testing.T) {
	store := newTestStore()

	token, err := store.Create(&models.User{Email: "fan@example.com", Role: models.RoleConsumer})
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = store.Resolve(token)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	// The failed resolve also evicts the entry; the store does not
	// accumulate dead sessions.
	store.mu.RLock()
	remaining := len(store.sessions)
	store.mu.RUnlock()
	assert.Zero(t, remaining)
}

func TestStoreCreateSweepsExpired(t *testing.T) {
	store := newTestStore()

	for i := 0; i < 5; i++ {
		_, err := store.Create(&models.User{Email: "fan@example.com", Role: models.RoleConsumer})
		require.NoError(t, err)
	}

	// Once the clock passes their TTL, the next create collects all five
	// even though their tokens were never presented again.
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	token, err := store.Create(&models.User{Email: "late@example.com", Role: models.RoleConsumer})
	require.NoError(t, err)

	store.mu.RLock()
	remaining := len(store.sessions)
	store.mu.RUnlock()
	assert.Equal(t, 1, remaining)

	sess, err := store.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "late@example.com", sess.Email)
}

func TestStoreUpdateEmail(t *testing.T) {
	store := newTestStore()

	token, err := store.Create(&models.User{Email: "old@example.com", Role: models.RoleConsumer})
	require.NoError(t, err)
	sess, err := store.Resolve(token)
	require.NoError(t, err)

	store.UpdateEmail(sess.ID, "new@example.com")

	sess, err = store.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", sess.Email)
}
