package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore writes files under root and serves them below urlPrefix.
type LocalStore struct {
	root      string
	urlPrefix string
}

func NewLocalStore(root, urlPrefix string) *LocalStore {
	return &LocalStore{root: root, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

func (s *LocalStore) Put(_ context.Context, category, filename, _ string, r io.Reader) (string, error) {
	category = cleanCategory(category)
	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	full := filepath.Join(dir, name)
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", err
	}
	return path.Join(s.urlPrefix, category, name), nil
}

func (s *LocalStore) Delete(_ context.Context, url string) error {
	full, ok := s.pathFor(url)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) pathFor(url string) (string, bool) {
	rel := strings.TrimPrefix(url, s.urlPrefix+"/")
	if rel == url || rel == "" {
		return "", false
	}
	clean := path.Clean("/" + rel)
	return filepath.Join(s.root, filepath.FromSlash(clean)), true
}

func cleanCategory(c string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(c) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "misc"
	}
	return b.String()
}
