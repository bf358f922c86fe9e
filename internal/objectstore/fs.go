// Package objectstore is a filesystem-backed object bucket used for avatars
// when no hosted storage is configured.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fintrack/internal/core"
)

// Bucket stores objects as flat files under dir.
type Bucket struct {
	mu      sync.Mutex
	dir     string
	baseURL string
}

// New creates dir if needed. baseURL is the path prefix objects are served
// under, e.g. "/avatars".
func New(dir, baseURL string) (*Bucket, error) {
	if dir == "" {
		return nil, core.ErrBucketNotFound
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir %s: %w", dir, err)
	}
	return &Bucket{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory holding the objects.
func (b *Bucket) Dir() string { return b.dir }

func (b *Bucket) path(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(b.dir, name), nil
}

// ValidName accepts flat names without separators or dot segments.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".")
}

func (b *Bucket) Upload(ctx context.Context, name, _ string, data []byte, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := b.path(name)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !upsert {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(p, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return core.ErrObjectExists
		}
		if errors.Is(err, fs.ErrNotExist) {
			return core.ErrBucketNotFound
		}
		return fmt.Errorf("open object %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write object %s: %w", name, err)
	}
	return f.Close()
}

// Remove deletes the named objects. Missing objects are not an error.
func (b *Bucket) Remove(ctx context.Context, names ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := b.path(name)
		if err != nil {
			return err
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove object %s: %w", name, err)
		}
	}
	return nil
}

func (b *Bucket) PublicURL(name string) string {
	return b.baseURL + "/" + url.PathEscape(name)
}

// Open returns the object's contents.
func (b *Bucket) Open(name string) ([]byte, error) {
	p, err := b.path(name)
	if err != nil {
		return nil, core.ErrNotFound
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.ErrNotFound
	}
	return data, err
}
