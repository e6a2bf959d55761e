package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/pkg/id"
	pkgtoken "github.com/bookswap-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldUsername         = "username"
	fieldEmail            = "email"
	fieldEmailConfirmed   = "email_confirmed"
	fieldPhone            = "phone"
	fieldDisplayName      = "display_name"
	fieldBio              = "bio"
	fieldPasswordHash     = "password_hash"
	fieldOwnerDisplayName = "owner_display_name"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	RegisterWithSession(ctx context.Context, req domain.CreateUserRequest) (*domain.Session, string, string, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	SoftDeleteByUser(ctx context.Context, userID string) error
}

type ownedBookStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.OwnedBook, error)
	Update(ctx context.Context, bookID string, updates map[string]interface{}) error
}

type wantedBookStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.WantedBook, error)
}

// neighborhoodCascader applies the profile-plus-books neighborhood update
// transactionally. See the dynamo CascadeWriter.
type neighborhoodCascader interface {
	CascadeNeighborhood(ctx context.Context, userID, neighborhood string, ownedBookIDs, wantedBookIDs []string) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type service struct {
	repo            userStore
	sessionRepo     sessionStore
	ownedRepo       ownedBookStore
	wantedRepo      wantedBookStore
	cascade         neighborhoodCascader
	jwtProvider     jwtSigner
	refreshTokenDur time.Duration
}

type ServiceDeps struct {
	UserRepo        userStore
	SessionRepo     sessionStore
	OwnedRepo       ownedBookStore
	WantedRepo      wantedBookStore
	Cascade         neighborhoodCascader
	JWTProvider     jwtSigner
	RefreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:            deps.UserRepo,
		sessionRepo:     deps.SessionRepo,
		ownedRepo:       deps.OwnedRepo,
		wantedRepo:      deps.WantedRepo,
		cascade:         deps.Cascade,
		jwtProvider:     deps.JWTProvider,
		refreshTokenDur: deps.RefreshTokenDur,
	}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		DisplayName:  req.DisplayName,
		Neighborhood: req.Neighborhood,
		AuthProvider: "local",
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) RegisterWithSession(ctx context.Context, req domain.CreateUserRequest) (*domain.Session, string, string, error) {
	u, err := s.Register(ctx, req)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, "", "", err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, "", "", err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, "", "", err
	}
	sess.User = u
	return sess, bearer, refreshToken, nil
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// Update applies profile edits. A neighborhood change goes through the
// transactional cascade so every book record the user owns keeps its
// denormalized copy in sync; a display-name change is propagated to owned
// books best effort.
func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Username != nil && *req.Username != current.Username {
		if _, err := s.repo.GetByUsername(ctx, *req.Username); err == nil {
			return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
		}
		updates[fieldUsername] = *req.Username
	}
	if req.Email != nil && *req.Email != current.Email {
		if _, err := s.repo.GetByEmail(ctx, *req.Email); err == nil {
			return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		updates[fieldEmail] = *req.Email
		updates[fieldEmailConfirmed] = false
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.DisplayName != nil {
		updates[fieldDisplayName] = *req.DisplayName
	}
	if req.Bio != nil {
		updates[fieldBio] = *req.Bio
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
	}

	if req.Neighborhood != nil && *req.Neighborhood != current.Neighborhood {
		if err := s.cascadeNeighborhood(ctx, userID, *req.Neighborhood); err != nil {
			return nil, err
		}
	}

	if req.DisplayName != nil && *req.DisplayName != current.DisplayName {
		s.propagateDisplayName(ctx, userID, *req.DisplayName)
	}

	return s.repo.Get(ctx, userID)
}

func (s *service) cascadeNeighborhood(ctx context.Context, userID, neighborhood string) error {
	ownedBooks, err := s.ownedRepo.ListByOwner(ctx, userID)
	if err != nil {
		return err
	}
	wantedBooks, err := s.wantedRepo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	ownedIDs := make([]string, 0, len(ownedBooks))
	for _, b := range ownedBooks {
		ownedIDs = append(ownedIDs, b.BookID)
	}
	wantedIDs := make([]string, 0, len(wantedBooks))
	for _, b := range wantedBooks {
		wantedIDs = append(wantedIDs, b.BookID)
	}
	return s.cascade.CascadeNeighborhood(ctx, userID, neighborhood, ownedIDs, wantedIDs)
}

// propagateDisplayName refreshes the owner_display_name copy on each owned
// book. Unlike the neighborhood cascade this is per record and best effort; a
// stale display name on a listing is cosmetic.
func (s *service) propagateDisplayName(ctx context.Context, userID, displayName string) {
	books, err := s.ownedRepo.ListByOwner(ctx, userID)
	if err != nil {
		slog.Warn("display name propagation: listing books failed", "user_id", userID, "err", err)
		return
	}
	for _, b := range books {
		if err := s.ownedRepo.Update(ctx, b.BookID, map[string]interface{}{fieldOwnerDisplayName: displayName}); err != nil {
			slog.Warn("display name propagation failed for book", "book_id", b.BookID, "err", err)
		}
	}
}

func (s *service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	return s.sessionRepo.SoftDeleteByUser(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: string(hash)})
}
