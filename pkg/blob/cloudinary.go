// Package blob provides the backing object store for uploaded course
// content. Objects are addressed by server-generated keys, never by
// client-supplied filenames.
package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// CloudinaryStore stores blobs in a Cloudinary folder.
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// NewCloudinaryStore constructs a Cloudinary-backed store.
func NewCloudinaryStore(cfg Config, logger zerolog.Logger) (*CloudinaryStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryStore{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "blob_store").Logger(),
	}, nil
}

// Put uploads the blob under the given key and returns its public URL.
func (s *CloudinaryStore) Put(ctx context.Context, key string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     key,
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to store blob: %w", err)
	}

	s.logger.Info().Str("key", result.PublicID).Msg("blob stored")
	return result.SecureURL, nil
}

// Delete removes the blob. A missing blob is not an error.
func (s *CloudinaryStore) Delete(ctx context.Context, key string) error {
	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: s.qualify(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}

	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("failed to delete blob: %s", result.Result)
	}

	s.logger.Info().Str("key", key).Str("result", result.Result).Msg("blob deleted")
	return nil
}

// Exists reports whether a blob is stored under the key.
func (s *CloudinaryStore) Exists(ctx context.Context, key string) (bool, error) {
	asset, err := s.client.Admin.Asset(ctx, admin.AssetParams{PublicID: s.qualify(key)})
	if err != nil {
		return false, fmt.Errorf("failed to look up blob: %w", err)
	}

	return asset.PublicID != "", nil
}

func (s *CloudinaryStore) qualify(key string) string {
	if s.folder == "" {
		return key
	}
	return s.folder + "/" + key
}
