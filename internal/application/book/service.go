package book

import (
	"context"
	"fmt"
	"time"

	"github.com/bookswap-api/internal/application/notification"
	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/infrastructure/catalog"
	"github.com/bookswap-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldCondition = "condition"
	fieldGenreTags = "genre_tags"
)

type Service interface {
	CreateOwned(ctx context.Context, ownerID string, req domain.CreateOwnedBookRequest) (*domain.OwnedBook, error)
	GetOwned(ctx context.Context, bookID string) (*domain.OwnedBook, error)
	ListOwnedByUser(ctx context.Context, userID string) ([]domain.OwnedBook, error)
	ListAllOwned(ctx context.Context) ([]domain.OwnedBook, error)
	UpdateOwned(ctx context.Context, bookID, requesterID string, req domain.UpdateOwnedBookRequest) (*domain.OwnedBook, error)
	DeleteOwned(ctx context.Context, bookID, requesterID string) error

	CreateWanted(ctx context.Context, userID string, req domain.CreateWantedBookRequest) (*domain.WantedBook, error)
	ListWantedByUser(ctx context.Context, userID string) ([]domain.WantedBook, error)
	DeleteWanted(ctx context.Context, bookID, requesterID string) error

	SearchCatalog(ctx context.Context, query string, limit int) ([]catalog.Result, error)
}

type ownedStore interface {
	Put(ctx context.Context, b *domain.OwnedBook) error
	Get(ctx context.Context, bookID string) (*domain.OwnedBook, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.OwnedBook, error)
	ListAll(ctx context.Context) ([]domain.OwnedBook, error)
	Update(ctx context.Context, bookID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, bookID string) error
}

type wantedStore interface {
	Put(ctx context.Context, b *domain.WantedBook) error
	Get(ctx context.Context, bookID string) (*domain.WantedBook, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WantedBook, error)
	ListByTitle(ctx context.Context, title string) ([]domain.WantedBook, error)
	SoftDelete(ctx context.Context, bookID string) error
}

type ownerStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type catalogSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]catalog.Result, error)
}

type service struct {
	ownedRepo  ownedStore
	wantedRepo wantedStore
	userRepo   ownerStore
	notifier   notification.Notifier
	catalog    catalogSearcher
}

type ServiceDeps struct {
	OwnedRepo  ownedStore
	WantedRepo wantedStore
	UserRepo   ownerStore
	Notifier   notification.Notifier
	Catalog    catalogSearcher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		ownedRepo:  deps.OwnedRepo,
		wantedRepo: deps.WantedRepo,
		userRepo:   deps.UserRepo,
		notifier:   deps.Notifier,
		catalog:    deps.Catalog,
	}
}

// CreateOwned stores the book with the owner's display name and neighborhood
// denormalized onto it, then notifies every user whose wishlist carries the
// same title. The notification is best effort and never fails the create.
func (s *service) CreateOwned(ctx context.Context, ownerID string, req domain.CreateOwnedBookRequest) (*domain.OwnedBook, error) {
	cond := domain.Condition(req.Condition)
	if !domain.ValidCondition(cond, false) {
		return nil, fmt.Errorf("invalid condition %q: %w", req.Condition, domain.ErrBadRequest)
	}
	owner, err := s.userRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	b := &domain.OwnedBook{
		BookID:            id.New(),
		Title:             req.Title,
		Author:            req.Author,
		Condition:         cond,
		Neighborhood:      owner.Neighborhood,
		OwnerID:           ownerID,
		OwnerDisplayName:  owner.DisplayName,
		OwnerNeighborhood: owner.Neighborhood,
		CatalogID:         req.CatalogID,
		GenreTags:         req.GenreTags,
		Enable:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.ownedRepo.Put(ctx, b); err != nil {
		return nil, err
	}
	s.notifyWishers(ctx, b)
	return b, nil
}

// notifyWishers enqueues a book-availability notification for every user
// wanting a book with this title, except the owner. Lookup failures are
// swallowed; availability mail is a side effect of the create.
func (s *service) notifyWishers(ctx context.Context, b *domain.OwnedBook) {
	if s.notifier == nil {
		return
	}
	wishes, err := s.wantedRepo.ListByTitle(ctx, b.Title)
	if err != nil {
		return
	}
	seen := make(map[string]struct{})
	for _, w := range wishes {
		if w.UserID == b.OwnerID {
			continue
		}
		if _, ok := seen[w.UserID]; ok {
			continue
		}
		seen[w.UserID] = struct{}{}
		s.notifier.Enqueue(notification.Job{
			Kind:    domain.KindBookAvailability,
			UserID:  w.UserID,
			Message: fmt.Sprintf("%q by %s is now available in %s", b.Title, b.Author, b.OwnerNeighborhood),
		})
	}
}

func (s *service) GetOwned(ctx context.Context, bookID string) (*domain.OwnedBook, error) {
	return s.ownedRepo.Get(ctx, bookID)
}

func (s *service) ListOwnedByUser(ctx context.Context, userID string) ([]domain.OwnedBook, error) {
	return s.ownedRepo.ListByOwner(ctx, userID)
}

func (s *service) ListAllOwned(ctx context.Context) ([]domain.OwnedBook, error) {
	return s.ownedRepo.ListAll(ctx)
}

func (s *service) UpdateOwned(ctx context.Context, bookID, requesterID string, req domain.UpdateOwnedBookRequest) (*domain.OwnedBook, error) {
	b, err := s.ownedRepo.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != requesterID {
		return nil, fmt.Errorf("book belongs to another user: %w", domain.ErrForbidden)
	}
	updates := map[string]interface{}{}
	if req.Condition != nil {
		cond := domain.Condition(*req.Condition)
		if !domain.ValidCondition(cond, false) {
			return nil, fmt.Errorf("invalid condition %q: %w", *req.Condition, domain.ErrBadRequest)
		}
		updates[fieldCondition] = string(cond)
	}
	if req.GenreTags != nil {
		updates[fieldGenreTags] = *req.GenreTags
	}
	if len(updates) == 0 {
		return b, nil
	}
	if err := s.ownedRepo.Update(ctx, bookID, updates); err != nil {
		return nil, err
	}
	return s.ownedRepo.Get(ctx, bookID)
}

func (s *service) DeleteOwned(ctx context.Context, bookID, requesterID string) error {
	b, err := s.ownedRepo.Get(ctx, bookID)
	if err != nil {
		return err
	}
	if b.OwnerID != requesterID {
		return fmt.Errorf("book belongs to another user: %w", domain.ErrForbidden)
	}
	return s.ownedRepo.SoftDelete(ctx, bookID)
}

func (s *service) CreateWanted(ctx context.Context, userID string, req domain.CreateWantedBookRequest) (*domain.WantedBook, error) {
	cond := domain.Condition(req.Condition)
	if !domain.ValidCondition(cond, true) {
		return nil, fmt.Errorf("invalid condition %q: %w", req.Condition, domain.ErrBadRequest)
	}
	owner, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	b := &domain.WantedBook{
		BookID:           id.New(),
		Title:            req.Title,
		Author:           req.Author,
		DesiredCondition: cond,
		Neighborhood:     owner.Neighborhood,
		UserID:           userID,
		GenreTags:        req.GenreTags,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.wantedRepo.Put(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListWantedByUser(ctx context.Context, userID string) ([]domain.WantedBook, error) {
	return s.wantedRepo.ListByUser(ctx, userID)
}

func (s *service) DeleteWanted(ctx context.Context, bookID, requesterID string) error {
	b, err := s.wantedRepo.Get(ctx, bookID)
	if err != nil {
		return err
	}
	if b.UserID != requesterID {
		return fmt.Errorf("book belongs to another user: %w", domain.ErrForbidden)
	}
	return s.wantedRepo.SoftDelete(ctx, bookID)
}

func (s *service) SearchCatalog(ctx context.Context, query string, limit int) ([]catalog.Result, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", domain.ErrBadRequest)
	}
	return s.catalog.Search(ctx, query, limit)
}
