package swap

import (
	"context"
	"errors"
	"testing"

	"github.com/bookswap-api/internal/application/notification"
	"github.com/bookswap-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSwapStore struct{ mock.Mock }

func (m *mockSwapStore) Put(ctx context.Context, s *domain.SwapRequest) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSwapStore) Get(ctx context.Context, swapID string) (*domain.SwapRequest, error) {
	args := m.Called(ctx, swapID)
	if s, _ := args.Get(0).(*domain.SwapRequest); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSwapStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.SwapRequest, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.SwapRequest), args.Error(1)
}
func (m *mockSwapStore) ListByRequester(ctx context.Context, requesterID string) ([]domain.SwapRequest, error) {
	args := m.Called(ctx, requesterID)
	return args.Get(0).([]domain.SwapRequest), args.Error(1)
}
func (m *mockSwapStore) SetStatus(ctx context.Context, swapID string, status domain.SwapStatus) error {
	return m.Called(ctx, swapID, status).Error(0)
}

type mockOwnedStore struct{ mock.Mock }

func (m *mockOwnedStore) Get(ctx context.Context, bookID string) (*domain.OwnedBook, error) {
	args := m.Called(ctx, bookID)
	if b, _ := args.Get(0).(*domain.OwnedBook); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOwnedStore) SoftDelete(ctx context.Context, bookID string) error {
	return m.Called(ctx, bookID).Error(0)
}

type captureNotifier struct{ jobs []notification.Job }

func (n *captureNotifier) Enqueue(job notification.Job) { n.jobs = append(n.jobs, job) }

// --- helpers ---

func pendingSwap() *domain.SwapRequest {
	return &domain.SwapRequest{
		SwapID:      "s1",
		RequesterID: "req",
		OwnerID:     "own",
		OwnedBookID: "b1",
		Status:      domain.SwapPending,
	}
}

// --- Create tests ---

func TestCreate_NotifiesOwner(t *testing.T) {
	ss, os := &mockSwapStore{}, &mockOwnedStore{}
	os.On("Get", mock.Anything, "b1").Return(&domain.OwnedBook{BookID: "b1", OwnerID: "own", Title: "Dune"}, nil)
	ss.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.SwapRequest) bool {
		return s.Status == domain.SwapPending && s.OwnerID == "own" && s.RequesterID == "req"
	})).Return(nil)

	n := &captureNotifier{}
	svc := NewService(ss, os, n)
	sw, err := svc.Create(context.Background(), "req", domain.CreateSwapRequest{OwnedBookID: "b1"})

	require.NoError(t, err)
	assert.Equal(t, domain.SwapPending, sw.Status)
	require.Len(t, n.jobs, 1)
	assert.Equal(t, "own", n.jobs[0].UserID)
	assert.Equal(t, notification.PriorityNormal, n.jobs[0].Priority)
}

func TestCreate_OwnBookRejected(t *testing.T) {
	os := &mockOwnedStore{}
	os.On("Get", mock.Anything, "b1").Return(&domain.OwnedBook{BookID: "b1", OwnerID: "req"}, nil)

	svc := NewService(&mockSwapStore{}, os, nil)
	_, err := svc.Create(context.Background(), "req", domain.CreateSwapRequest{OwnedBookID: "b1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_OfferedBookMustBelongToRequester(t *testing.T) {
	os := &mockOwnedStore{}
	os.On("Get", mock.Anything, "b1").Return(&domain.OwnedBook{BookID: "b1", OwnerID: "own"}, nil)
	os.On("Get", mock.Anything, "b2").Return(&domain.OwnedBook{BookID: "b2", OwnerID: "someone-else"}, nil)

	offered := "b2"
	svc := NewService(&mockSwapStore{}, os, nil)
	_, err := svc.Create(context.Background(), "req", domain.CreateSwapRequest{OwnedBookID: "b1", OfferedBookID: &offered})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// --- Accept tests ---

func TestAccept_HighPriorityNotification(t *testing.T) {
	ss := &mockSwapStore{}
	ss.On("Get", mock.Anything, "s1").Return(pendingSwap(), nil)
	ss.On("SetStatus", mock.Anything, "s1", domain.SwapAccepted).Return(nil)

	n := &captureNotifier{}
	svc := NewService(ss, &mockOwnedStore{}, n)
	sw, err := svc.Accept(context.Background(), "s1", "own")

	require.NoError(t, err)
	assert.Equal(t, domain.SwapAccepted, sw.Status)
	require.Len(t, n.jobs, 1)
	assert.Equal(t, "req", n.jobs[0].UserID)
	assert.Equal(t, notification.PriorityHigh, n.jobs[0].Priority)
}

func TestAccept_OnlyOwner(t *testing.T) {
	ss := &mockSwapStore{}
	ss.On("Get", mock.Anything, "s1").Return(pendingSwap(), nil)

	svc := NewService(ss, &mockOwnedStore{}, nil)
	_, err := svc.Accept(context.Background(), "s1", "req")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestAccept_AlreadyAcceptedConflicts(t *testing.T) {
	ss := &mockSwapStore{}
	sw := pendingSwap()
	sw.Status = domain.SwapAccepted
	ss.On("Get", mock.Anything, "s1").Return(sw, nil)

	svc := NewService(ss, &mockOwnedStore{}, nil)
	_, err := svc.Accept(context.Background(), "s1", "own")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// --- Decline tests ---

func TestDecline_NormalPriorityNotification(t *testing.T) {
	ss := &mockSwapStore{}
	ss.On("Get", mock.Anything, "s1").Return(pendingSwap(), nil)
	ss.On("SetStatus", mock.Anything, "s1", domain.SwapDeclined).Return(nil)

	n := &captureNotifier{}
	svc := NewService(ss, &mockOwnedStore{}, n)
	_, err := svc.Decline(context.Background(), "s1", "own")

	require.NoError(t, err)
	require.Len(t, n.jobs, 1)
	assert.Equal(t, notification.PriorityNormal, n.jobs[0].Priority)
}

// --- Complete tests ---

func TestComplete_RetiresBothBooks(t *testing.T) {
	ss, os := &mockSwapStore{}, &mockOwnedStore{}
	offered := "b2"
	sw := pendingSwap()
	sw.Status = domain.SwapAccepted
	sw.OfferedBookID = &offered
	ss.On("Get", mock.Anything, "s1").Return(sw, nil)
	ss.On("SetStatus", mock.Anything, "s1", domain.SwapCompleted).Return(nil)
	os.On("SoftDelete", mock.Anything, "b1").Return(nil)
	os.On("SoftDelete", mock.Anything, "b2").Return(nil)

	svc := NewService(ss, os, nil)
	got, err := svc.Complete(context.Background(), "s1", "req")

	require.NoError(t, err)
	assert.Equal(t, domain.SwapCompleted, got.Status)
	os.AssertExpectations(t)
}

func TestComplete_EitherPartyAllowed(t *testing.T) {
	for _, userID := range []string{"own", "req"} {
		ss := &mockSwapStore{}
		os := &mockOwnedStore{}
		sw := pendingSwap()
		sw.Status = domain.SwapAccepted
		ss.On("Get", mock.Anything, "s1").Return(sw, nil)
		ss.On("SetStatus", mock.Anything, "s1", domain.SwapCompleted).Return(nil)
		os.On("SoftDelete", mock.Anything, "b1").Return(nil)

		svc := NewService(ss, os, nil)
		_, err := svc.Complete(context.Background(), "s1", userID)
		assert.NoError(t, err, "user %s", userID)
	}
}

func TestComplete_PendingSwapConflicts(t *testing.T) {
	ss := &mockSwapStore{}
	ss.On("Get", mock.Anything, "s1").Return(pendingSwap(), nil)

	svc := NewService(ss, &mockOwnedStore{}, nil)
	_, err := svc.Complete(context.Background(), "s1", "own")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// --- Get tests ---

func TestGet_OnlyParticipants(t *testing.T) {
	ss := &mockSwapStore{}
	ss.On("Get", mock.Anything, "s1").Return(pendingSwap(), nil)

	svc := NewService(ss, &mockOwnedStore{}, nil)
	_, err := svc.Get(context.Background(), "s1", "stranger")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
