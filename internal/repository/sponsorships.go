package repository

import (
	"sync"
	"time"

	"stagepass/internal/errors"
	"stagepass/internal/models"
)

// SponsorshipRepository stores sponsorship requests keyed by id.
type SponsorshipRepository struct {
	mu    sync.RWMutex
	seq   int64
	byID  map[int64]*models.SponsorshipRequest
	order []int64
}

func NewSponsorshipRepository() *SponsorshipRepository {
	return &SponsorshipRepository{
		byID: make(map[int64]*models.SponsorshipRequest),
	}
}

// Create allocates a new PENDING request for an event.
func (r *SponsorshipRepository) Create(eventID int64) *models.SponsorshipRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	req := &models.SponsorshipRequest{
		ID:        r.seq,
		EventID:   eventID,
		Status:    models.SponsorshipPending,
		CreatedAt: time.Now(),
	}
	r.byID[req.ID] = req
	r.order = append(r.order, req.ID)
	return cloneSponsorship(req)
}

func cloneSponsorship(req *models.SponsorshipRequest) *models.SponsorshipRequest {
	clone := *req
	return &clone
}

// GetByID returns a snapshot of the request, or nil when none exists.
func (r *SponsorshipRepository) GetByID(id int64) *models.SponsorshipRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req := r.byID[id]
	if req == nil {
		return nil
	}
	return cloneSponsorship(req)
}

// Decide transitions a PENDING request to ACCEPTED or REJECTED. Percent and
// sponsor account are recorded only on acceptance. The decision is terminal.
func (r *SponsorshipRepository) Decide(id int64, status models.SponsorshipStatus, percent int, sponsorAccount string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req := r.byID[id]
	if req == nil {
		return errors.ErrNotFound
	}
	if req.Status != models.SponsorshipPending {
		return errors.ErrRequestDecided
	}
	req.Status = status
	if status == models.SponsorshipAccepted {
		req.Percent = percent
		req.SponsorAccount = sponsorAccount
	}
	return nil
}

// List returns all requests in creation order.
func (r *SponsorshipRepository) List() []*models.SponsorshipRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.SponsorshipRequest, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, cloneSponsorship(r.byID[id]))
	}
	return result
}
