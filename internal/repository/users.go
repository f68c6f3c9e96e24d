package repository

import (
	"strings"
	"sync"
	"time"

	"stagepass/internal/errors"
	"stagepass/internal/models"
)

// UserRepository stores user accounts keyed by email. It owns the global
// email uniqueness invariant and the provider (org name, org address) pair
// uniqueness invariant.
type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byEmail: make(map[string]*models.User),
	}
}

// Create registers a new account. It fails with ErrEmailTaken when the email
// is already in use by any role, and with ErrOrganisationTaken when a
// provider's (name, address) pair collides with another provider.
func (r *UserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return errors.ErrEmailTaken
	}
	if user.Role == models.RoleProvider && r.organisationTakenLocked(user.OrgName, user.OrgAddress, key) {
		return errors.ErrOrganisationTaken
	}

	user.RegisteredAt = time.Now()
	r.byEmail[key] = user
	return nil
}

// GetByEmail returns the account for an email, or nil when none exists.
func (r *UserRepository) GetByEmail(email string) *models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byEmail[normalizeEmail(email)]
}

// Update overwrites the account stored under oldEmail, re-keying when the
// email changed. Collision invariants are re-checked against other accounts.
func (r *UserRepository) Update(oldEmail string, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oldKey := normalizeEmail(oldEmail)
	if _, exists := r.byEmail[oldKey]; !exists {
		return errors.ErrNotFound
	}

	newKey := normalizeEmail(user.Email)
	if newKey != oldKey {
		if _, exists := r.byEmail[newKey]; exists {
			return errors.ErrEmailTaken
		}
	}
	if user.Role == models.RoleProvider && r.organisationTakenLocked(user.OrgName, user.OrgAddress, oldKey) {
		return errors.ErrOrganisationTaken
	}

	delete(r.byEmail, oldKey)
	r.byEmail[newKey] = user
	return nil
}

// OrganisationTaken reports whether another provider already uses the
// (name, address) pair. excludeEmail is the account being edited.
func (r *UserRepository) OrganisationTaken(name, address, excludeEmail string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.organisationTakenLocked(name, address, normalizeEmail(excludeEmail))
}

func (r *UserRepository) organisationTakenLocked(name, address, excludeKey string) bool {
	for key, u := range r.byEmail {
		if key == excludeKey || u.Role != models.RoleProvider {
			continue
		}
		if strings.EqualFold(u.OrgName, name) && strings.EqualFold(u.OrgAddress, address) {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
