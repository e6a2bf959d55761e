package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/pkg/id"
)

// Content types accepted for profile images.
var imageContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	Kind        string
	IsPrivate   bool
	UploaderID  string
}

type Service interface {
	Upload(ctx context.Context, input UploadInput) (*domain.File, error)
	// UploadProfileImage stores the image, links it to the user's profile,
	// and returns the file record plus an expiring signed URL.
	UploadProfileImage(ctx context.Context, userID string, input UploadInput) (*domain.File, string, error)
	ProfileImageURL(ctx context.Context, userID string) (string, error)
	Download(ctx context.Context, fileID, requesterID string, isAdmin bool) (io.ReadCloser, *domain.File, error)
	Delete(ctx context.Context, fileID, requesterID string, isAdmin bool) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type fileStore interface {
	Put(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, fileID string) (*domain.File, error)
	SoftDelete(ctx context.Context, fileID string) error
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	store    objectStore
	fileRepo fileStore
	userRepo profileStore
	urlTTL   time.Duration
}

func NewService(store objectStore, fileRepo fileStore, userRepo profileStore, urlTTL time.Duration) Service {
	return &service{store: store, fileRepo: fileRepo, userRepo: userRepo, urlTTL: urlTTL}
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*domain.File, error) {
	safeName := sanitizeFilename(input.Filename)
	kind := input.Kind
	if kind == "" {
		kind = domain.FileKindAttachment
	}
	key := fmt.Sprintf("files/%s/%s-%s", input.UploaderID, id.New(), safeName)
	hasher := sha256.New()
	tee := io.TeeReader(input.Reader, hasher)
	if _, err := s.store.Upload(ctx, key, tee, input.ContentType); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	f := &domain.File{
		FileID:           id.New(),
		Object:           key,
		Size:             input.Size,
		Type:             input.ContentType,
		Name:             safeName,
		Hash:             hex.EncodeToString(hasher.Sum(nil)),
		Kind:             kind,
		IsPrivate:        input.IsPrivate,
		UploadedByUserID: input.UploaderID,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.fileRepo.Put(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) UploadProfileImage(ctx context.Context, userID string, input UploadInput) (*domain.File, string, error) {
	if _, ok := imageContentTypes[input.ContentType]; !ok {
		return nil, "", fmt.Errorf("unsupported image type %q: %w", input.ContentType, domain.ErrBadRequest)
	}
	input.Kind = domain.FileKindProfileImage
	input.IsPrivate = false
	input.UploaderID = userID
	f, err := s.Upload(ctx, input)
	if err != nil {
		return nil, "", err
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"profile_image_key": f.Object}); err != nil {
		return nil, "", err
	}
	url, err := s.store.PresignedURL(ctx, f.Object, s.urlTTL)
	if err != nil {
		return nil, "", err
	}
	return f, url, nil
}

func (s *service) ProfileImageURL(ctx context.Context, userID string) (string, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.ProfileImageKey == "" {
		return "", fmt.Errorf("no profile image: %w", domain.ErrNotFound)
	}
	return s.store.PresignedURL(ctx, u.ProfileImageKey, s.urlTTL)
}

func (s *service) Download(ctx context.Context, fileID, requesterID string, isAdmin bool) (io.ReadCloser, *domain.File, error) {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if !f.Enable {
		return nil, nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	if f.IsPrivate && f.UploadedByUserID != requesterID && !isAdmin {
		return nil, nil, fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}
	rc, err := s.store.Download(ctx, f.Object)
	if err != nil {
		return nil, nil, err
	}
	return rc, f, nil
}

func (s *service) Delete(ctx context.Context, fileID, requesterID string, isAdmin bool) error {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if !f.Enable {
		return fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	if f.UploadedByUserID != requesterID && !isAdmin {
		return fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}
	if err := s.store.Delete(ctx, f.Object); err != nil {
		return err
	}
	return s.fileRepo.SoftDelete(ctx, fileID)
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}
