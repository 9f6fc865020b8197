package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"brickpress/pkg/domain"
	"brickpress/pkg/storage"
)

// UploadFile stores an image blob and returns its new storage id.
func (a *App) UploadFile(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	if size == 0 {
		return "", ErrEmptyUpload
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	} else if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}
	storageID := uuid.NewString()
	if err := a.blobs.Put(ctx, storage.GenerationKey(storageID), r, size, contentType); err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	return storageID, nil
}

// UploadURL reserves a storage id and returns a presigned PUT target for it.
func (a *App) UploadURL(ctx context.Context) (domain.UploadTicket, error) {
	storageID := uuid.NewString()
	url, err := a.blobs.PresignPut(ctx, storage.GenerationKey(storageID), a.uploadURLTTL)
	if err != nil {
		return domain.UploadTicket{}, fmt.Errorf("presign upload: %w", err)
	}
	return domain.UploadTicket{URL: url, StorageID: storageID}, nil
}
