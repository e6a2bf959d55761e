package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookswap-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func userWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		UserID:       "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Enable:       true,
	}
}

// --- Login tests ---

func TestLogin_HappyPath(t *testing.T) {
	ss, us, jwt := &mockSessionStore{}, &mockUserStore{}, &mockJWTSigner{}
	us.On("GetByUsername", mock.Anything, "alice").Return(userWithPassword(t, "secretpass"), nil)
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer-token", nil)

	svc := NewService(ss, us, jwt, 30*24*time.Hour)
	res, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "secretpass"})

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", res.Bearer)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "u1", res.Session.UserID)
	require.NotNil(t, res.Session.User)
	ss.AssertExpectations(t)
}

func TestLogin_EmailAsIdentifier(t *testing.T) {
	ss, us, jwt := &mockSessionStore{}, &mockUserStore{}, &mockJWTSigner{}
	us.On("GetByUsername", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(userWithPassword(t, "secretpass"), nil)
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer-token", nil)

	svc := NewService(ss, us, jwt, time.Hour)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "alice@example.com", Password: "secretpass"})

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(userWithPassword(t, "secretpass"), nil)

	svc := NewService(&mockSessionStore{}, us, &mockJWTSigner{}, time.Hour)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_DisabledAccount(t *testing.T) {
	us := &mockUserStore{}
	u := userWithPassword(t, "secretpass")
	u.Enable = false
	us.On("GetByUsername", mock.Anything, "alice").Return(u, nil)

	svc := NewService(&mockSessionStore{}, us, &mockJWTSigner{}, time.Hour)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "secretpass"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := NewService(&mockSessionStore{}, us, &mockJWTSigner{}, time.Hour)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "whatever"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- GetCurrent tests ---

func TestGetCurrent_DisabledSession(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", Enable: false}, nil)

	svc := NewService(ss, &mockUserStore{}, &mockJWTSigner{}, time.Hour)
	_, err := svc.GetCurrent(context.Background(), "s1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestGetCurrent_AttachesUser(t *testing.T) {
	ss, us := &mockSessionStore{}, &mockUserStore{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", UserID: "u1", Enable: true}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Username: "alice"}, nil)

	svc := NewService(ss, us, &mockJWTSigner{}, time.Hour)
	sess, err := svc.GetCurrent(context.Background(), "s1")

	require.NoError(t, err)
	require.NotNil(t, sess.User)
	assert.Equal(t, "alice", sess.User.Username)
}

// --- Refresh tests ---

func TestRefresh_RotatesToken(t *testing.T) {
	ss, us, jwt := &mockSessionStore{}, &mockUserStore{}, &mockJWTSigner{}
	sess := &domain.Session{
		SessionID:        "s1",
		UserID:           "u1",
		Enable:           true,
		RefreshToken:     "old-token",
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	ss.On("GetByRefreshToken", mock.Anything, "old-token").Return(sess, nil)
	ss.On("RotateRefreshToken", mock.Anything, "s1", mock.Anything, mock.Anything).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: domain.RoleUser}, nil)
	jwt.On("Sign", "u1", domain.RoleUser, "s1").Return("new-bearer", nil)

	svc := NewService(ss, us, jwt, time.Hour)
	bearer, newToken, err := svc.Refresh(context.Background(), "old-token")

	require.NoError(t, err)
	assert.Equal(t, "new-bearer", bearer)
	assert.NotEmpty(t, newToken)
	assert.NotEqual(t, "old-token", newToken)
	ss.AssertExpectations(t)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("GetByRefreshToken", mock.Anything, "old-token").Return(&domain.Session{
		SessionID:        "s1",
		RefreshExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}, nil)

	svc := NewService(ss, &mockUserStore{}, &mockJWTSigner{}, time.Hour)
	_, _, err := svc.Refresh(context.Background(), "old-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- Logout ---

func TestLogout_DisablesSession(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Update", mock.Anything, "s1", map[string]interface{}{fieldEnable: false}).Return(nil)

	svc := NewService(ss, &mockUserStore{}, &mockJWTSigner{}, time.Hour)
	require.NoError(t, svc.Logout(context.Background(), "s1"))
	ss.AssertExpectations(t)
}
