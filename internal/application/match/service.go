package match

import (
	"context"

	"github.com/bookswap-api/internal/domain"
)

type Service interface {
	ForUser(ctx context.Context, userID string) ([]domain.MatchCandidate, error)
}

type ownedStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.OwnedBook, error)
	ListAll(ctx context.Context) ([]domain.OwnedBook, error)
}

type wantedStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.WantedBook, error)
	ListAll(ctx context.Context) ([]domain.WantedBook, error)
}

type service struct {
	ownedRepo  ownedStore
	wantedRepo wantedStore
}

func NewService(ownedRepo ownedStore, wantedRepo wantedStore) Service {
	return &service{ownedRepo: ownedRepo, wantedRepo: wantedRepo}
}

// ForUser fetches the four book sets and runs the engine. Store errors
// propagate untransformed; the computation itself cannot fail.
func (s *service) ForUser(ctx context.Context, userID string) ([]domain.MatchCandidate, error) {
	myOwned, err := s.ownedRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	myWanted, err := s.wantedRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	allOwned, err := s.ownedRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	allWanted, err := s.wantedRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Compute(userID, myOwned, myWanted, allOwned, allWanted), nil
}
