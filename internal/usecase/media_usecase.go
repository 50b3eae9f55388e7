package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"

	"alima/internal/domain/entity"
	"alima/internal/domain/service"
	"alima/internal/infrastructure/metrics"
	"alima/pkg/logger"
)

const (
	ProfilePictureFolder = "profile_pictures"
	DefaultMediaFolder   = "uploads"

	// MaxUploadSize bounds the bytes read from one upload.
	MaxUploadSize = 10 << 20

	placeholderBaseURL = "https://storage.googleapis.com/alima-public/placeholders"
)

var avatarPlaceholders = []string{
	placeholderBaseURL + "/avatar-1.png",
	placeholderBaseURL + "/avatar-2.png",
	placeholderBaseURL + "/avatar-3.png",
	placeholderBaseURL + "/avatar-4.png",
	placeholderBaseURL + "/avatar-5.png",
	placeholderBaseURL + "/avatar-6.png",
}

var genericPlaceholder = placeholderBaseURL + "/service.png"

var allowedFolders = map[string]bool{
	ProfilePictureFolder: true,
	DefaultMediaFolder:   true,
	"services":           true,
	"messages":           true,
	"payment_proofs":     true,
	"applications":       true,
}

type MediaUseCase struct {
	host service.MediaHost
}

// NewMediaUseCase builds the relay. host may be nil, in which case every
// upload resolves to a placeholder.
func NewMediaUseCase(host service.MediaHost) *MediaUseCase {
	return &MediaUseCase{host: host}
}

type UploadInput struct {
	File      io.Reader
	Folder    string
	SubjectID string
}

// Upload forwards the file to the media host. It never fails: when the file
// cannot be read, is not an image, or the host rejects it, the result is a
// placeholder asset.
func (uc *MediaUseCase) Upload(ctx context.Context, input UploadInput) *entity.MediaAsset {
	folder := NormalizeFolder(input.Folder)

	asset, err := uc.upload(ctx, input.File, folder)
	if err != nil {
		logger.Warn("Media upload to %s degraded to placeholder: %v", folder, err)
		metrics.IncMediaUpload("placeholder")
		return Placeholder(folder, input.SubjectID)
	}

	metrics.IncMediaUpload("uploaded")
	return asset
}

func (uc *MediaUseCase) upload(ctx context.Context, file io.Reader, folder string) (*entity.MediaAsset, error) {
	if uc.host == nil {
		return nil, fmt.Errorf("no media host configured")
	}
	if file == nil {
		return nil, fmt.Errorf("no file")
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("upload exceeds %d bytes", MaxUploadSize)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("unsupported content type %s", mtype.String())
	}

	asset := &entity.MediaAsset{
		Format: strings.TrimPrefix(mtype.Extension(), "."),
	}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		asset.Width, asset.Height, asset.Format = cfg.Width, cfg.Height, format
	}

	obj, err := uc.host.Upload(ctx, bytes.NewReader(data), mtype.String(), folder)
	if err != nil {
		return nil, fmt.Errorf("media host: %w", err)
	}

	asset.PublicID = obj.Key
	asset.SecureURL = obj.URL
	return asset, nil
}

// NormalizeFolder maps an arbitrary folder tag onto a known folder.
func NormalizeFolder(folder string) string {
	folder = strings.Trim(strings.ToLower(strings.TrimSpace(folder)), "/")
	if allowedFolders[folder] {
		return folder
	}
	return DefaultMediaFolder
}

// Placeholder returns the fallback asset for an upload. Profile pictures
// get an avatar chosen by the hash of subjectID, so the same subject always
// gets the same avatar.
func Placeholder(folder, subjectID string) *entity.MediaAsset {
	url := genericPlaceholder
	if folder == ProfilePictureFolder {
		idx := xxhash.Sum64String(subjectID) % uint64(len(avatarPlaceholders))
		url = avatarPlaceholders[idx]
	}
	return &entity.MediaAsset{
		PublicID:  entity.PlaceholderPublicID,
		SecureURL: url,
		Width:     400,
		Height:    400,
		Format:    "png",
	}
}
