package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Cache stores fetched document binaries and downloaded audio under a base
// directory. Keys are slash-separated ("pdf/<id>", "audio/<name>.mp3") and
// are flattened into safe file names. The cache is disposable: losing an
// entry only means the content must be fetched again.
type Cache struct {
	basePath string
}

func New(basePath string) (*Cache, error) {
	if basePath == "" {
		basePath = "./data/cache"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{basePath: basePath}, nil
}

func (c *Cache) Put(_ context.Context, key string, data []byte) (string, error) {
	path := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create cache subdir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("commit cache entry: %w", err)
	}
	return path, nil
}

func (c *Cache) Path(_ context.Context, key string) (string, error) {
	path := c.pathFor(key)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("cache entry %s: %w", key, err)
	}
	return path, nil
}

func (c *Cache) Has(_ context.Context, key string) bool {
	_, err := os.Stat(c.pathFor(key))
	return err == nil
}

func (c *Cache) pathFor(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = sanitizePart(part)
	}
	return filepath.Join(append([]string{c.basePath}, parts...)...)
}

func sanitizePart(part string) string {
	part = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, part)
	if part == "" || part == "." || part == ".." {
		return "_"
	}
	return part
}
