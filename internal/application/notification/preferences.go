package notification

import (
	"context"
	"errors"
	"time"

	"github.com/bookswap-api/internal/domain"
)

// PreferenceService manages the per-user opt-in record. A user with no
// stored record gets the all-enabled default.
type PreferenceService interface {
	Get(ctx context.Context, userID string) (*domain.NotificationPreference, error)
	Update(ctx context.Context, userID string, req domain.UpdatePreferenceRequest) (*domain.NotificationPreference, error)
}

type preferenceStore interface {
	Get(ctx context.Context, userID string) (*domain.NotificationPreference, error)
	Put(ctx context.Context, p *domain.NotificationPreference) error
}

type preferenceService struct {
	repo preferenceStore
}

func NewPreferenceService(repo preferenceStore) PreferenceService {
	return &preferenceService{repo: repo}
}

func (s *preferenceService) Get(ctx context.Context, userID string) (*domain.NotificationPreference, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultPreference(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies the provided fields on top of the current (or default)
// preference and stores the full record.
func (s *preferenceService) Update(ctx context.Context, userID string, req domain.UpdatePreferenceRequest) (*domain.NotificationPreference, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.NewMatches != nil {
		p.NewMatches = *req.NewMatches
	}
	if req.BookAvailability != nil {
		p.BookAvailability = *req.BookAvailability
	}
	if req.NewMessages != nil {
		p.NewMessages = *req.NewMessages
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
