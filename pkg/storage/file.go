package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/absmach/fedlearn/pkg/errors"
)

const fileExt = ".snapshot"

var _ Repository = (*fileStorage)(nil)

type fileStorage struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStorage stores every key as one file inside dir.
func NewFileStorage(dir string) (Repository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &fileStorage{dir: dir}, nil
}

func (fs *fileStorage) Save(_ context.Context, key string, data []byte) error {
	path, err := fs.path(key)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	// Write then rename so a crash never leaves a truncated snapshot behind.
	tmp, err := os.CreateTemp(fs.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()

		return fmt.Errorf("failed to sync snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move snapshot file: %w", err)
	}

	return nil
}

func (fs *fileStorage) Load(_ context.Context, key string) ([]byte, error) {
	path, err := fs.path(key)
	if err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil, errors.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	return data, nil
}

func (fs *fileStorage) Delete(_ context.Context, key string) error {
	path, err := fs.path(key)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	err = os.Remove(path)
	switch {
	case os.IsNotExist(err):
		return errors.ErrNotFound
	case err != nil:
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}

	return nil
}

func (fs *fileStorage) List(_ context.Context) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage directory: %w", err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, fileExt))
	}
	slices.Sort(keys)

	return keys, nil
}

func (fs *fileStorage) Close() error {
	return nil
}

func (fs *fileStorage) path(key string) (string, error) {
	if key == "" {
		return "", errors.ErrEmptyKey
	}

	name := sanitizeKey(key)
	if name == "" || name != key {
		return "", fmt.Errorf("%w: invalid key %q", errors.ErrInvalidData, key)
	}

	return filepath.Join(fs.dir, name+fileExt), nil
}

// sanitizeKey keeps alphanumerics, hyphens, underscores and single dots so
// the key is safe to use as a file name.
func sanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}

	result := b.String()
	for strings.Contains(result, "..") {
		result = strings.ReplaceAll(result, "..", ".")
	}

	return strings.Trim(result, ".")
}
