package file

import (
	"context"
	"path"
	"strings"
	"time"
)

// Object describes a stored file or directory.
type Object struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Storage is a blob store addressed by slash separated paths.
type Storage interface {
	// Put writes data at p, replacing any existing object.
	Put(ctx context.Context, p string, data []byte, contentType string) error
	// Get returns the content at p or ErrFileNotFound.
	Get(ctx context.Context, p string) ([]byte, error)
	// Delete removes p. Deleting a missing object returns ErrFileNotFound.
	Delete(ctx context.Context, p string) error
	// Exists reports whether an object is stored at p.
	Exists(ctx context.Context, p string) bool
	// List returns the direct children of dir.
	List(ctx context.Context, dir string) ([]Object, error)
	// URL returns the public URL of p.
	URL(p string) string
}

// cleanKey normalizes p to a relative object key.
func cleanKey(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.Contains(p, "\x00") {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return p, nil
}

// SanitizeFilename strips directories and characters that are unsafe in a
// single path segment. Empty results become "unnamed".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case 0, ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	if name == "." || name == ".." || name == "" || name == "/" {
		return "unnamed"
	}
	return name
}
