package neighborhood

import (
	"context"

	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName = "name"
	fieldCity = "city"
)

// Service manages the neighborhoods reference table. Signup forms read it;
// only admins write it.
type Service interface {
	List(ctx context.Context) ([]domain.Neighborhood, error)
	Get(ctx context.Context, neighborhoodID string) (*domain.Neighborhood, error)
	Create(ctx context.Context, input domain.NeighborhoodInput) (*domain.Neighborhood, error)
	Update(ctx context.Context, neighborhoodID string, input domain.NeighborhoodInput) (*domain.Neighborhood, error)
	Delete(ctx context.Context, neighborhoodID string) error // hard delete
}

type neighborhoodStore interface {
	Scan(ctx context.Context) ([]domain.Neighborhood, error)
	Get(ctx context.Context, neighborhoodID string) (*domain.Neighborhood, error)
	Put(ctx context.Context, n *domain.Neighborhood) error
	Update(ctx context.Context, neighborhoodID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, neighborhoodID string) error
}

type service struct {
	repo neighborhoodStore
}

func NewService(repo neighborhoodStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.Neighborhood, error) {
	return s.repo.Scan(ctx)
}

func (s *service) Get(ctx context.Context, neighborhoodID string) (*domain.Neighborhood, error) {
	return s.repo.Get(ctx, neighborhoodID)
}

func (s *service) Create(ctx context.Context, input domain.NeighborhoodInput) (*domain.Neighborhood, error) {
	n := &domain.Neighborhood{
		NeighborhoodID: id.New(),
		Name:           input.Name,
		City:           input.City,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) Update(ctx context.Context, neighborhoodID string, input domain.NeighborhoodInput) (*domain.Neighborhood, error) {
	updates := map[string]interface{}{fieldName: input.Name}
	if input.City != "" {
		updates[fieldCity] = input.City
	}
	if err := s.repo.Update(ctx, neighborhoodID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, neighborhoodID)
}

func (s *service) Delete(ctx context.Context, neighborhoodID string) error {
	return s.repo.HardDelete(ctx, neighborhoodID)
}
