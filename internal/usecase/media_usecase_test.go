package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alima/internal/domain/entity"
	"alima/internal/domain/service"
)

type mockMediaHost struct {
	mock.Mock
}

func (m *mockMediaHost) Upload(ctx context.Context, file io.Reader, contentType, folder string) (*service.UploadedObject, error) {
	args := m.Called(ctx, file, contentType, folder)
	if obj := args.Get(0); obj != nil {
		return obj.(*service.UploadedObject), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMediaHost) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockMediaHost) Close() error {
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestUploadReturnsHostedAsset(t *testing.T) {
	host := &mockMediaHost{}
	host.On("Upload", mock.Anything, mock.Anything, "image/png", "services").
		Return(&service.UploadedObject{Key: "services/abc.png", URL: "https://cdn.alima.test/services/abc.png"}, nil)

	uc := NewMediaUseCase(host)
	asset := uc.Upload(context.Background(), UploadInput{File: bytes.NewReader(pngBytes(t, 3, 2)), Folder: "services"})

	assert.False(t, asset.IsPlaceholder())
	assert.Equal(t, "services/abc.png", asset.PublicID)
	assert.Equal(t, "https://cdn.alima.test/services/abc.png", asset.SecureURL)
	assert.Equal(t, 3, asset.Width)
	assert.Equal(t, 2, asset.Height)
	assert.Equal(t, "png", asset.Format)
	host.AssertExpectations(t)
}

func TestUploadDegradesToPlaceholder(t *testing.T) {
	host := &mockMediaHost{}
	host.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("503 upstream unavailable"))
	uc := NewMediaUseCase(host)
	ctx := context.Background()

	avatar := uc.Upload(ctx, UploadInput{File: bytes.NewReader(pngBytes(t, 1, 1)), Folder: ProfilePictureFolder, SubjectID: "prov-1"})
	assert.True(t, avatar.IsPlaceholder())
	assert.Equal(t, entity.PlaceholderPublicID, avatar.PublicID)
	assert.Contains(t, avatarPlaceholders, avatar.SecureURL)

	again := uc.Upload(ctx, UploadInput{File: bytes.NewReader(pngBytes(t, 1, 1)), Folder: ProfilePictureFolder, SubjectID: "prov-1"})
	assert.Equal(t, avatar.SecureURL, again.SecureURL)

	generic := uc.Upload(ctx, UploadInput{File: bytes.NewReader(pngBytes(t, 1, 1)), Folder: "services", SubjectID: "prov-1"})
	assert.Equal(t, genericPlaceholder, generic.SecureURL)
}

func TestUploadRejectsNonImagesWithoutError(t *testing.T) {
	host := &mockMediaHost{}
	uc := NewMediaUseCase(host)

	asset := uc.Upload(context.Background(), UploadInput{File: strings.NewReader("just some text"), Folder: "messages"})
	assert.True(t, asset.IsPlaceholder())
	assert.NotEmpty(t, asset.SecureURL)
	host.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	noHost := NewMediaUseCase(nil)
	assert.True(t, noHost.Upload(context.Background(), UploadInput{File: bytes.NewReader(pngBytes(t, 1, 1))}).IsPlaceholder())
}

func TestNormalizeFolder(t *testing.T) {
	assert.Equal(t, ProfilePictureFolder, NormalizeFolder(" Profile_Pictures/ "))
	assert.Equal(t, "payment_proofs", NormalizeFolder("payment_proofs"))
	assert.Equal(t, DefaultMediaFolder, NormalizeFolder("../etc"))
	assert.Equal(t, DefaultMediaFolder, NormalizeFolder(""))
}
