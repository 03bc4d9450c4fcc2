// Package images stores uploaded livestock photos and returns the URL they
// are reachable under.
package images

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// MaxImageBytes bounds a single upload.
const MaxImageBytes = 5 << 20

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Store persists image bytes under a key and reports their public URL.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// Supported reports whether contentType is an accepted image format.
func Supported(contentType string) bool {
	_, ok := extensions[normalize(contentType)]
	return ok
}

// NewKey builds a unique object key for an image of livestockID.
func NewKey(livestockID, contentType string) (string, error) {
	ext, ok := extensions[normalize(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	if livestockID == "" || strings.ContainsAny(livestockID, `/\`) || strings.Contains(livestockID, "..") {
		return "", fmt.Errorf("invalid livestock id %q", livestockID)
	}
	return fmt.Sprintf("livestock/%s/%s%s", livestockID, uuid.NewString(), ext), nil
}

func normalize(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	}
	return data, nil
}
