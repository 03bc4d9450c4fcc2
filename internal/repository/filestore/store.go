package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const lockFileName = ".stockwise.lock"

// Store keeps one JSON file per slot inside a directory. An exclusive file
// lock keeps a second process from writing the same directory.
type Store struct {
	dir    string
	lock   *flock.Flock
	logger *zap.Logger
}

// New opens (creating if needed) the directory and takes its lock.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, errors.New("store directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("store directory %s is in use by another process", dir)
	}

	logger.Debug("file store opened", zap.String("dir", dir))
	return &Store{dir: dir, lock: lock, logger: logger}, nil
}

func (s *Store) pathFor(slot string) (string, error) {
	if strings.TrimSpace(slot) == "" {
		return "", errors.New("slot must not be empty")
	}
	if strings.ContainsAny(slot, `/\`) || strings.Contains(slot, "..") {
		return "", fmt.Errorf("invalid slot name %q", slot)
	}
	return filepath.Join(s.dir, slot+".json"), nil
}

// Load reads the slot file; a missing file means the slot was never written.
func (s *Store) Load(_ context.Context, slot string) ([]byte, bool, error) {
	path, err := s.pathFor(slot)
	if err != nil {
		return nil, false, err
	}

	payload, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read slot %s: %w", slot, err)
	}
	return payload, true, nil
}

// Save replaces the slot file atomically via a temp file and rename.
func (s *Store) Save(_ context.Context, slot string, payload []byte) error {
	path, err := s.pathFor(slot)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+slot+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slot %s: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace slot %s: %w", slot, err)
	}

	s.logger.Debug("slot written", zap.String("slot", slot), zap.Int("bytes", len(payload)))
	return nil
}

// Close releases the directory lock.
func (s *Store) Close(context.Context) error {
	return s.lock.Unlock()
}
