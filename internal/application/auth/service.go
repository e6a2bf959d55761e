package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/infrastructure/google"
	"github.com/bookswap-api/internal/infrastructure/smtp"
	"github.com/bookswap-api/internal/pkg/id"
	pkgtoken "github.com/bookswap-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// Verification record types stored in the user_verifications table.
const (
	verTypeOTP   = "otp"
	verTypeEmail = "email"

	otpTTL        = 15 * time.Minute
	emailTokenTTL = 24 * time.Hour
)

type PasswordRecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ValidateOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type SessionResult struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) error
	ValidateOTP(ctx context.Context, req ValidateOTPRequest) (*SessionResult, error)
	ChangePassword(ctx context.Context, userID, newPassword string) error
	RequestEmailConfirmation(ctx context.Context, userID string) error
	ValidateEmailToken(ctx context.Context, userID, token string) error
	GoogleSignIn(ctx context.Context, idToken string) (*SessionResult, error)
	DeleteAccount(ctx context.Context, userID string, req DeleteAccountRequest) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error)
	Delete(ctx context.Context, userID, verType string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	SoftDeleteByUser(ctx context.Context, userID string) error
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type service struct {
	verificationRepo verificationStore
	userRepo         userStore
	sessionRepo      sessionStore
	mailer           smtp.Mailer
	google           googleVerifier
	jwtProvider      jwtSigner
	refreshTokenDur  time.Duration
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	UserRepo         userStore
	SessionRepo      sessionStore
	Mailer           smtp.Mailer
	GoogleVerifier   googleVerifier
	JWTProvider      jwtSigner
	RefreshTokenDur  time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		verificationRepo: deps.VerificationRepo,
		userRepo:         deps.UserRepo,
		sessionRepo:      deps.SessionRepo,
		mailer:           deps.Mailer,
		google:           deps.GoogleVerifier,
		jwtProvider:      deps.JWTProvider,
		refreshTokenDur:  deps.RefreshTokenDur,
	}
}

func (s *service) RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) error {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(999999))
	if err != nil {
		return err
	}
	otp := fmt.Sprintf("%06d", n.Int64())

	v := &domain.UserVerification{
		UserID:    u.UserID,
		Type:      verTypeOTP,
		Code:      otp,
		ExpiresAt: time.Now().Add(otpTTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return err
	}
	return s.mailer.SendEmail(u.Email, "Password Recovery Code", "Your recovery code: "+otp)
}

func (s *service) ValidateOTP(ctx context.Context, req ValidateOTPRequest) (*SessionResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	v, err := s.verificationRepo.Get(ctx, u.UserID, verTypeOTP)
	if err != nil {
		return nil, fmt.Errorf("recovery code not found: %w", domain.ErrNotFound)
	}
	if v.Code != req.OTP {
		return nil, fmt.Errorf("invalid recovery code: %w", domain.ErrUnauthorized)
	}
	if v.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("recovery code expired: %w", domain.ErrUnauthorized)
	}
	if err := s.verificationRepo.Delete(ctx, u.UserID, verTypeOTP); err != nil {
		slog.Warn("failed to delete used recovery code", "user_id", u.UserID, "err", err)
	}
	return s.openSession(ctx, u)
}

func (s *service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.Update(ctx, userID, map[string]interface{}{"password_hash": string(hash)})
}

func (s *service) RequestEmailConfirmation(ctx context.Context, userID string) error {
	token, err := randomToken(32)
	if err != nil {
		return err
	}
	v := &domain.UserVerification{
		UserID:    userID,
		Type:      verTypeEmail,
		Code:      token,
		ExpiresAt: time.Now().Add(emailTokenTTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return err
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.mailer.SendEmail(u.Email, "Confirm your email", "Confirmation token: "+token)
}

func (s *service) ValidateEmailToken(ctx context.Context, userID, token string) error {
	v, err := s.verificationRepo.Get(ctx, userID, verTypeEmail)
	if err != nil {
		return fmt.Errorf("confirmation token not found: %w", domain.ErrNotFound)
	}
	if v.Code != token {
		return fmt.Errorf("invalid confirmation token: %w", domain.ErrUnauthorized)
	}
	if v.ExpiresAt < time.Now().Unix() {
		return fmt.Errorf("confirmation token expired: %w", domain.ErrUnauthorized)
	}
	if err := s.verificationRepo.Delete(ctx, userID, verTypeEmail); err != nil {
		slog.Warn("failed to delete used confirmation token", "user_id", userID, "err", err)
	}
	return s.userRepo.Update(ctx, userID, map[string]interface{}{"email_confirmed": true})
}

// GoogleSignIn verifies the ID token and signs the user in, linking or
// creating the account as needed. An existing account with the same email is
// linked to the Google subject; otherwise a new account is created with the
// token's profile data and no password.
func (s *service) GoogleSignIn(ctx context.Context, idToken string) (*SessionResult, error) {
	payload, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if !payload.EmailVerified {
		return nil, fmt.Errorf("google account email not verified: %w", domain.ErrUnauthorized)
	}

	u, err := s.userRepo.GetByGoogleSub(ctx, payload.Sub)
	if err != nil {
		u, err = s.userRepo.GetByEmail(ctx, payload.Email)
		if err == nil {
			if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{"google_sub": payload.Sub}); err != nil {
				return nil, err
			}
			u.GoogleSub = payload.Sub
		} else {
			u, err = s.createGoogleUser(ctx, payload)
			if err != nil {
				return nil, err
			}
		}
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return s.openSession(ctx, u)
}

func (s *service) createGoogleUser(ctx context.Context, payload *google.Payload) (*domain.User, error) {
	now := time.Now().UTC()
	displayName := payload.Name
	if displayName == "" {
		displayName = payload.Email
	}
	u := &domain.User{
		UserID:         id.New(),
		Username:       payload.Email,
		Email:          payload.Email,
		Role:           domain.RoleUser,
		DisplayName:    displayName,
		EmailConfirmed: true,
		AuthProvider:   "google",
		GoogleSub:      payload.Sub,
		Enable:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteAccount disables the account after re-verifying the caller's
// password. Google-only accounts have no password to check and must
// re-authenticate through their provider first.
func (s *service) DeleteAccount(ctx context.Context, userID string, req DeleteAccountRequest) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("reauthentication required: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return fmt.Errorf("password is incorrect: %w", domain.ErrUnauthorized)
	}
	if err := s.userRepo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	return s.sessionRepo.SoftDeleteByUser(ctx, userID)
}

func (s *service) openSession(ctx context.Context, u *domain.User) (*SessionResult, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
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
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &SessionResult{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}

func randomToken(n int) (string, error) {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		b[i] = letters[idx.Int64()]
	}
	return string(b), nil
}
