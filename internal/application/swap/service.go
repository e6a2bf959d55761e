package swap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookswap-api/internal/application/notification"
	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, requesterID string, req domain.CreateSwapRequest) (*domain.SwapRequest, error)
	Get(ctx context.Context, swapID, userID string) (*domain.SwapRequest, error)
	ListIncoming(ctx context.Context, ownerID string) ([]domain.SwapRequest, error)
	ListOutgoing(ctx context.Context, requesterID string) ([]domain.SwapRequest, error)
	Accept(ctx context.Context, swapID, userID string) (*domain.SwapRequest, error)
	Decline(ctx context.Context, swapID, userID string) (*domain.SwapRequest, error)
	Complete(ctx context.Context, swapID, userID string) (*domain.SwapRequest, error)
}

type swapStore interface {
	Put(ctx context.Context, s *domain.SwapRequest) error
	Get(ctx context.Context, swapID string) (*domain.SwapRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.SwapRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]domain.SwapRequest, error)
	SetStatus(ctx context.Context, swapID string, status domain.SwapStatus) error
}

type ownedBookStore interface {
	Get(ctx context.Context, bookID string) (*domain.OwnedBook, error)
	SoftDelete(ctx context.Context, bookID string) error
}

type service struct {
	repo      swapStore
	ownedRepo ownedBookStore
	notifier  notification.Notifier
}

func NewService(repo swapStore, ownedRepo ownedBookStore, notifier notification.Notifier) Service {
	return &service{repo: repo, ownedRepo: ownedRepo, notifier: notifier}
}

// Create opens a pending swap for someone else's book, optionally offering
// one of the requester's own books in exchange. The owner gets a normal
// priority notification.
func (s *service) Create(ctx context.Context, requesterID string, req domain.CreateSwapRequest) (*domain.SwapRequest, error) {
	b, err := s.ownedRepo.Get(ctx, req.OwnedBookID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID == requesterID {
		return nil, fmt.Errorf("cannot request your own book: %w", domain.ErrBadRequest)
	}
	if req.OfferedBookID != nil {
		offered, err := s.ownedRepo.Get(ctx, *req.OfferedBookID)
		if err != nil {
			return nil, err
		}
		if offered.OwnerID != requesterID {
			return nil, fmt.Errorf("offered book belongs to another user: %w", domain.ErrForbidden)
		}
	}
	now := time.Now().UTC()
	sw := &domain.SwapRequest{
		SwapID:        id.New(),
		RequesterID:   requesterID,
		OwnerID:       b.OwnerID,
		OwnedBookID:   req.OwnedBookID,
		OfferedBookID: req.OfferedBookID,
		Status:        domain.SwapPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Put(ctx, sw); err != nil {
		return nil, err
	}
	s.notify(b.OwnerID, fmt.Sprintf("Someone wants to swap for %q", b.Title), notification.PriorityNormal)
	return sw, nil
}

func (s *service) Get(ctx context.Context, swapID, userID string) (*domain.SwapRequest, error) {
	sw, err := s.repo.Get(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if sw.OwnerID != userID && sw.RequesterID != userID {
		return nil, fmt.Errorf("not a swap participant: %w", domain.ErrForbidden)
	}
	return sw, nil
}

func (s *service) ListIncoming(ctx context.Context, ownerID string) ([]domain.SwapRequest, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) ListOutgoing(ctx context.Context, requesterID string) ([]domain.SwapRequest, error) {
	return s.repo.ListByRequester(ctx, requesterID)
}

// Accept moves a pending swap to accepted. Only the book's owner may accept.
// The requester is notified at high priority.
func (s *service) Accept(ctx context.Context, swapID, userID string) (*domain.SwapRequest, error) {
	sw, err := s.transition(ctx, swapID, userID, ownerOnly, domain.SwapPending, domain.SwapAccepted)
	if err != nil {
		return nil, err
	}
	s.notify(sw.RequesterID, "Your swap request was accepted", notification.PriorityHigh)
	return sw, nil
}

func (s *service) Decline(ctx context.Context, swapID, userID string) (*domain.SwapRequest, error) {
	sw, err := s.transition(ctx, swapID, userID, ownerOnly, domain.SwapPending, domain.SwapDeclined)
	if err != nil {
		return nil, err
	}
	s.notify(sw.RequesterID, "Your swap request was declined", notification.PriorityNormal)
	return sw, nil
}

// Complete closes an accepted swap. Either party may mark it completed; the
// exchanged listings are retired since the books changed hands.
func (s *service) Complete(ctx context.Context, swapID, userID string) (*domain.SwapRequest, error) {
	sw, err := s.transition(ctx, swapID, userID, eitherParty, domain.SwapAccepted, domain.SwapCompleted)
	if err != nil {
		return nil, err
	}
	s.retireBook(ctx, sw.OwnedBookID)
	if sw.OfferedBookID != nil {
		s.retireBook(ctx, *sw.OfferedBookID)
	}
	return sw, nil
}

type actorRule int

const (
	ownerOnly actorRule = iota
	eitherParty
)

func (s *service) transition(ctx context.Context, swapID, userID string, rule actorRule, from, to domain.SwapStatus) (*domain.SwapRequest, error) {
	sw, err := s.repo.Get(ctx, swapID)
	if err != nil {
		return nil, err
	}
	switch rule {
	case ownerOnly:
		if sw.OwnerID != userID {
			return nil, fmt.Errorf("only the book owner may do this: %w", domain.ErrForbidden)
		}
	case eitherParty:
		if sw.OwnerID != userID && sw.RequesterID != userID {
			return nil, fmt.Errorf("not a swap participant: %w", domain.ErrForbidden)
		}
	}
	if sw.Status != from {
		return nil, fmt.Errorf("swap is %s, expected %s: %w", sw.Status, from, domain.ErrConflict)
	}
	if err := s.repo.SetStatus(ctx, swapID, to); err != nil {
		return nil, err
	}
	sw.Status = to
	return sw, nil
}

func (s *service) retireBook(ctx context.Context, bookID string) {
	if err := s.ownedRepo.SoftDelete(ctx, bookID); err != nil {
		slog.Warn("failed to retire swapped book", "book_id", bookID, "err", err)
	}
}

func (s *service) notify(userID, message string, priority notification.Priority) {
	if s.notifier == nil {
		return
	}
	s.notifier.Enqueue(notification.Job{
		Kind:     domain.KindNewMatch,
		UserID:   userID,
		Message:  message,
		Priority: priority,
	})
}
