package file

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bookswap-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	// Drain so the tee hasher sees the content.
	_, _ = io.Copy(io.Discard, r)
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc, _ := args.Get(0).(io.ReadCloser); rc != nil {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockFileStore struct{ mock.Mock }

func (m *mockFileStore) Put(ctx context.Context, f *domain.File) error {
	return m.Called(ctx, f).Error(0)
}
func (m *mockFileStore) Get(ctx context.Context, fileID string) (*domain.File, error) {
	args := m.Called(ctx, fileID)
	if f, _ := args.Get(0).(*domain.File); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockFileStore) SoftDelete(ctx context.Context, fileID string) error {
	return m.Called(ctx, fileID).Error(0)
}

type mockProfileStore struct{ mock.Mock }

func (m *mockProfileStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProfileStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

// --- tests ---

const urlTTL = time.Hour

func TestUploadProfileImage_HappyPath(t *testing.T) {
	os, fs, us := &mockObjectStore{}, &mockFileStore{}, &mockProfileStore{}
	os.On("Upload", mock.Anything, mock.Anything, "image/jpeg").Return("s3://bucket/key", nil)
	fs.On("Put", mock.Anything, mock.MatchedBy(func(f *domain.File) bool {
		return f.Kind == domain.FileKindProfileImage && !f.IsPrivate && f.UploadedByUserID == "u1"
	})).Return(nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		key, ok := updates["profile_image_key"].(string)
		return ok && key != ""
	})).Return(nil)
	os.On("PresignedURL", mock.Anything, mock.Anything, urlTTL).Return("https://signed.example/img", nil)

	svc := NewService(os, fs, us, urlTTL)
	f, url, err := svc.UploadProfileImage(context.Background(), "u1", UploadInput{
		Reader:      strings.NewReader("jpeg-bytes"),
		Filename:    "me.jpg",
		ContentType: "image/jpeg",
		Size:        9,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/img", url)
	assert.NotEmpty(t, f.Hash)
	us.AssertExpectations(t)
}

func TestUploadProfileImage_RejectsNonImage(t *testing.T) {
	svc := NewService(&mockObjectStore{}, &mockFileStore{}, &mockProfileStore{}, urlTTL)
	_, _, err := svc.UploadProfileImage(context.Background(), "u1", UploadInput{
		Reader:      strings.NewReader("%PDF"),
		Filename:    "cv.pdf",
		ContentType: "application/pdf",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestProfileImageURL_NoImage(t *testing.T) {
	us := &mockProfileStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := NewService(&mockObjectStore{}, &mockFileStore{}, us, urlTTL)
	_, err := svc.ProfileImageURL(context.Background(), "u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDownload_PrivateFileForbiddenForStranger(t *testing.T) {
	fs := &mockFileStore{}
	fs.On("Get", mock.Anything, "f1").Return(&domain.File{
		FileID: "f1", Object: "files/u1/att", IsPrivate: true, UploadedByUserID: "u1", Enable: true,
	}, nil)

	svc := NewService(&mockObjectStore{}, fs, &mockProfileStore{}, urlTTL)
	_, _, err := svc.Download(context.Background(), "f1", "stranger", false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestDownload_AdminBypassesPrivacy(t *testing.T) {
	os, fs := &mockObjectStore{}, &mockFileStore{}
	fs.On("Get", mock.Anything, "f1").Return(&domain.File{
		FileID: "f1", Object: "files/u1/att", IsPrivate: true, UploadedByUserID: "u1", Enable: true,
	}, nil)
	os.On("Download", mock.Anything, "files/u1/att").Return(io.NopCloser(strings.NewReader("data")), nil)

	svc := NewService(os, fs, &mockProfileStore{}, urlTTL)
	rc, f, err := svc.Download(context.Background(), "f1", "admin-user", true)

	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "f1", f.FileID)
}

func TestDelete_RemovesObjectAndRecord(t *testing.T) {
	os, fs := &mockObjectStore{}, &mockFileStore{}
	fs.On("Get", mock.Anything, "f1").Return(&domain.File{
		FileID: "f1", Object: "files/u1/att", UploadedByUserID: "u1", Enable: true,
	}, nil)
	os.On("Delete", mock.Anything, "files/u1/att").Return(nil)
	fs.On("SoftDelete", mock.Anything, "f1").Return(nil)

	svc := NewService(os, fs, &mockProfileStore{}, urlTTL)
	require.NoError(t, svc.Delete(context.Background(), "f1", "u1", false))
	os.AssertExpectations(t)
	fs.AssertExpectations(t)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"me.jpg", "me.jpg"},
		{"../../etc/passwd", "passwd"},
		{"my photo (1).png", "my_photo__1_.png"},
		{"", "_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}
