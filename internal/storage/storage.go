// Package storage abstracts where task attachments live. Production
// runs against Google Cloud Storage, development against local disk.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/clubware/taskhub/internal/config"
	"github.com/clubware/taskhub/internal/constants"
)

// ErrAttachmentTooLarge is returned when a decoded payload exceeds
// constants.MaxAttachmentSize.
var ErrAttachmentTooLarge = fmt.Errorf("attachment exceeds %d bytes", constants.MaxAttachmentSize)

// BlobStore uploads attachment bytes and returns a public URL.
type BlobStore interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}

// NewFromConfig selects the blob store backend from STORAGE_BACKEND.
func NewFromConfig(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageBackend {
	case "gcs":
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentials)
	case "local", "":
		return NewLocalStore(cfg.LocalStorageDir, cfg.AppBaseURL)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

// ObjectPath builds the canonical storage path for a task attachment.
// A fresh UUID keeps concurrent uploads of same-named files apart.
func ObjectPath(taskID uint64, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("tasks/%d/%s%s", taskID, uuid.NewString(), ext)
}

// DecodePayload decodes an attachment payload sent by the client.
// Accepts both bare base64 and data URLs such as
// "data:image/png;base64,iVBOR...".
func DecodePayload(payload string) ([]byte, error) {
	if idx := strings.Index(payload, ";base64,"); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+len(";base64,"):]
	}

	// No payload within the size cap encodes to more characters than
	// this, so anything longer is rejected before it is decoded.
	if len(payload) > base64.StdEncoding.EncodedLen(constants.MaxAttachmentSize) {
		return nil, ErrAttachmentTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	if len(data) > constants.MaxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}
	return data, nil
}
