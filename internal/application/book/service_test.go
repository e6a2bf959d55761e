package book

import (
	"context"
	"errors"
	"testing"

	"github.com/bookswap-api/internal/application/notification"
	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/infrastructure/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOwnedStore struct{ mock.Mock }

func (m *mockOwnedStore) Put(ctx context.Context, b *domain.OwnedBook) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockOwnedStore) Get(ctx context.Context, bookID string) (*domain.OwnedBook, error) {
	args := m.Called(ctx, bookID)
	if b, _ := args.Get(0).(*domain.OwnedBook); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOwnedStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.OwnedBook, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.OwnedBook), args.Error(1)
}
func (m *mockOwnedStore) ListAll(ctx context.Context) ([]domain.OwnedBook, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.OwnedBook), args.Error(1)
}
func (m *mockOwnedStore) Update(ctx context.Context, bookID string, updates map[string]interface{}) error {
	return m.Called(ctx, bookID, updates).Error(0)
}
func (m *mockOwnedStore) SoftDelete(ctx context.Context, bookID string) error {
	return m.Called(ctx, bookID).Error(0)
}

type mockWantedStore struct{ mock.Mock }

func (m *mockWantedStore) Put(ctx context.Context, b *domain.WantedBook) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockWantedStore) Get(ctx context.Context, bookID string) (*domain.WantedBook, error) {
	args := m.Called(ctx, bookID)
	if b, _ := args.Get(0).(*domain.WantedBook); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockWantedStore) ListByUser(ctx context.Context, userID string) ([]domain.WantedBook, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.WantedBook), args.Error(1)
}
func (m *mockWantedStore) ListByTitle(ctx context.Context, title string) ([]domain.WantedBook, error) {
	args := m.Called(ctx, title)
	return args.Get(0).([]domain.WantedBook), args.Error(1)
}
func (m *mockWantedStore) SoftDelete(ctx context.Context, bookID string) error {
	return m.Called(ctx, bookID).Error(0)
}

type mockOwnerStore struct{ mock.Mock }

func (m *mockOwnerStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) Search(ctx context.Context, query string, limit int) ([]catalog.Result, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]catalog.Result), args.Error(1)
}

type captureNotifier struct{ jobs []notification.Job }

func (n *captureNotifier) Enqueue(job notification.Job) { n.jobs = append(n.jobs, job) }

// --- helpers ---

func newService(os *mockOwnedStore, ws *mockWantedStore, us *mockOwnerStore, n notification.Notifier, c *mockCatalog) Service {
	return NewService(ServiceDeps{
		OwnedRepo:  os,
		WantedRepo: ws,
		UserRepo:   us,
		Notifier:   n,
		Catalog:    c,
	})
}

func owner() *domain.User {
	return &domain.User{UserID: "u1", DisplayName: "Alice", Neighborhood: "Riverside", Enable: true}
}

// --- CreateOwned tests ---

func TestCreateOwned_DenormalizesOwnerFields(t *testing.T) {
	os, ws, us := &mockOwnedStore{}, &mockWantedStore{}, &mockOwnerStore{}
	us.On("Get", mock.Anything, "u1").Return(owner(), nil)
	os.On("Put", mock.Anything, mock.AnythingOfType("*domain.OwnedBook")).Return(nil)
	ws.On("ListByTitle", mock.Anything, "Dune").Return([]domain.WantedBook{}, nil)

	svc := newService(os, ws, us, &captureNotifier{}, nil)
	b, err := svc.CreateOwned(context.Background(), "u1", domain.CreateOwnedBookRequest{
		Title: "Dune", Author: "Frank Herbert", Condition: "good",
	})

	require.NoError(t, err)
	assert.Equal(t, "Alice", b.OwnerDisplayName)
	assert.Equal(t, "Riverside", b.OwnerNeighborhood)
	assert.Equal(t, "Riverside", b.Neighborhood)
	assert.True(t, b.Enable)
	os.AssertExpectations(t)
}

func TestCreateOwned_RejectsWildcardCondition(t *testing.T) {
	svc := newService(&mockOwnedStore{}, &mockWantedStore{}, &mockOwnerStore{}, nil, nil)
	_, err := svc.CreateOwned(context.Background(), "u1", domain.CreateOwnedBookRequest{
		Title: "Dune", Author: "Frank Herbert", Condition: "any",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreateOwned_NotifiesWishersExceptOwner(t *testing.T) {
	os, ws, us := &mockOwnedStore{}, &mockWantedStore{}, &mockOwnerStore{}
	us.On("Get", mock.Anything, "u1").Return(owner(), nil)
	os.On("Put", mock.Anything, mock.AnythingOfType("*domain.OwnedBook")).Return(nil)
	ws.On("ListByTitle", mock.Anything, "Dune").Return([]domain.WantedBook{
		{BookID: "w1", UserID: "u2", Title: "Dune"},
		{BookID: "w2", UserID: "u1", Title: "Dune"}, // the owner's own wish
		{BookID: "w3", UserID: "u2", Title: "Dune"}, // duplicate wisher
	}, nil)

	n := &captureNotifier{}
	svc := newService(os, ws, us, n, nil)
	_, err := svc.CreateOwned(context.Background(), "u1", domain.CreateOwnedBookRequest{
		Title: "Dune", Author: "Frank Herbert", Condition: "good",
	})

	require.NoError(t, err)
	require.Len(t, n.jobs, 1)
	assert.Equal(t, domain.KindBookAvailability, n.jobs[0].Kind)
	assert.Equal(t, "u2", n.jobs[0].UserID)
}

func TestCreateOwned_WisherLookupFailureDoesNotFailCreate(t *testing.T) {
	os, ws, us := &mockOwnedStore{}, &mockWantedStore{}, &mockOwnerStore{}
	us.On("Get", mock.Anything, "u1").Return(owner(), nil)
	os.On("Put", mock.Anything, mock.AnythingOfType("*domain.OwnedBook")).Return(nil)
	ws.On("ListByTitle", mock.Anything, "Dune").Return([]domain.WantedBook(nil), errors.New("store down"))

	svc := newService(os, ws, us, &captureNotifier{}, nil)
	_, err := svc.CreateOwned(context.Background(), "u1", domain.CreateOwnedBookRequest{
		Title: "Dune", Author: "Frank Herbert", Condition: "good",
	})
	assert.NoError(t, err)
}

// --- ownership tests ---

func TestUpdateOwned_ForbiddenForNonOwner(t *testing.T) {
	os := &mockOwnedStore{}
	os.On("Get", mock.Anything, "b1").Return(&domain.OwnedBook{BookID: "b1", OwnerID: "u1"}, nil)

	svc := newService(os, &mockWantedStore{}, &mockOwnerStore{}, nil, nil)
	_, err := svc.UpdateOwned(context.Background(), "b1", "intruder", domain.UpdateOwnedBookRequest{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestDeleteOwned_ForbiddenForNonOwner(t *testing.T) {
	os := &mockOwnedStore{}
	os.On("Get", mock.Anything, "b1").Return(&domain.OwnedBook{BookID: "b1", OwnerID: "u1"}, nil)

	svc := newService(os, &mockWantedStore{}, &mockOwnerStore{}, nil, nil)
	err := svc.DeleteOwned(context.Background(), "b1", "intruder")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestDeleteOwned_HappyPath(t *testing.T) {
	os := &mockOwnedStore{}
	os.On("Get", mock.Anything, "b1").Return(&domain.OwnedBook{BookID: "b1", OwnerID: "u1"}, nil)
	os.On("SoftDelete", mock.Anything, "b1").Return(nil)

	svc := newService(os, &mockWantedStore{}, &mockOwnerStore{}, nil, nil)
	require.NoError(t, svc.DeleteOwned(context.Background(), "b1", "u1"))
	os.AssertExpectations(t)
}

// --- wanted books ---

func TestCreateWanted_AcceptsWildcard(t *testing.T) {
	ws, us := &mockWantedStore{}, &mockOwnerStore{}
	us.On("Get", mock.Anything, "u1").Return(owner(), nil)
	ws.On("Put", mock.Anything, mock.AnythingOfType("*domain.WantedBook")).Return(nil)

	svc := newService(&mockOwnedStore{}, ws, us, nil, nil)
	b, err := svc.CreateWanted(context.Background(), "u1", domain.CreateWantedBookRequest{
		Title: "Dune", Author: "Frank Herbert", Condition: "any",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ConditionAny, b.DesiredCondition)
	assert.Equal(t, "Riverside", b.Neighborhood)
}

func TestDeleteWanted_ForbiddenForNonOwner(t *testing.T) {
	ws := &mockWantedStore{}
	ws.On("Get", mock.Anything, "w1").Return(&domain.WantedBook{BookID: "w1", UserID: "u1"}, nil)

	svc := newService(&mockOwnedStore{}, ws, &mockOwnerStore{}, nil, nil)
	err := svc.DeleteWanted(context.Background(), "w1", "intruder")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// --- catalog search ---

func TestSearchCatalog_EmptyQuery(t *testing.T) {
	svc := newService(&mockOwnedStore{}, &mockWantedStore{}, &mockOwnerStore{}, nil, &mockCatalog{})
	_, err := svc.SearchCatalog(context.Background(), "", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSearchCatalog_DelegatesToClient(t *testing.T) {
	c := &mockCatalog{}
	c.On("Search", mock.Anything, "dune", 5).Return([]catalog.Result{{Title: "Dune"}}, nil)

	svc := newService(&mockOwnedStore{}, &mockWantedStore{}, &mockOwnerStore{}, nil, c)
	got, err := svc.SearchCatalog(context.Background(), "dune", 5)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dune", got[0].Title)
	c.AssertExpectations(t)
}
