package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"craftmarket/internal/logging"
)

// LocalStore writes objects below a directory served at publicPath.
type LocalStore struct {
	dir        string
	publicPath string
}

func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: filepath.Clean(dir), publicPath: strings.TrimSuffix(publicPath, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	out, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		logging.FromContext(ctx).Error("failed to save upload", slog.String("path", target), logging.Err(err))
		_ = os.Remove(target)
		return "", err
	}
	return s.publicPath + "/" + path.Base(filepath.ToSlash(target)), nil
}

// Delete removes an object; a missing object is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) resolve(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	cleanKey := strings.TrimPrefix(path.Clean("/"+trimmed), "/")
	if cleanKey == "" || cleanKey != trimmed || strings.Contains(cleanKey, "/") {
		return "", fmt.Errorf("refusing to use upload key %q", key)
	}
	target := filepath.Clean(filepath.Join(s.dir, cleanKey))
	if !strings.HasPrefix(target, s.dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("refusing to use path outside upload dir: %q", key)
	}
	return target, nil
}
