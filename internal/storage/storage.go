// Package storage keeps uploaded images in object storage or on local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const MaxImageSize = 5 << 20

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image file too large (max 5MB)")
)

// ObjectStore persists an object under key and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ValidateImage checks the extension, size and sniffed content of an upload
// and returns the canonical extension and content type.
func ValidateImage(filename string, size int64, head []byte) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := imageTypes[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if size > MaxImageSize {
		return "", "", ErrTooLarge
	}
	sniffed := http.DetectContentType(head)
	if sniffed != contentType {
		return "", "", fmt.Errorf("%w: content is %s", ErrUnsupportedType, sniffed)
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return ext, contentType, nil
}

// ImageKey names an upload after its owner and upload time.
func ImageKey(userID int64, at time.Time, ext string) string {
	return fmt.Sprintf("%d_%d%s", userID, at.UnixMilli(), ext)
}
