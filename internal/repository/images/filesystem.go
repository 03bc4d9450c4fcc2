package images

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileStore keeps images below a root directory that the HTTP server exposes
// under publicBaseURL.
type FileStore struct {
	root          string
	publicBaseURL string
	logger        *zap.Logger
}

// NewFileStore creates root if needed.
func NewFileStore(root, publicBaseURL string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if root == "" {
		return nil, fmt.Errorf("image root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create image root: %w", err)
	}
	return &FileStore{
		root:          root,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        logger,
	}, nil
}

// Root returns the directory served as static content.
func (s *FileStore) Root() string { return s.root }

// Put writes the image atomically and returns its public URL.
func (s *FileStore) Put(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return "", fmt.Errorf("invalid image key %q", key)
	}

	data, err := readLimited(r)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit image: %w", err)
	}

	s.logger.Debug("image stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return s.publicBaseURL + "/" + clean, nil
}
