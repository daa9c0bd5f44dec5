package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	// ErrObjectNotFound is returned when no object exists under a key.
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectExists is returned by Put when the key is already taken.
	ErrObjectExists = errors.New("object already exists")
	// ErrInvalidKey is returned for keys that could escape the store root.
	ErrInvalidKey = errors.New("invalid object key")
)

// PutOptions describes upload options for object storage.
type PutOptions struct {
	ContentType string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Store abstracts object storage operations. Keys are slash separated,
// "<owner id>/<stored name>".
type Store interface {
	// Put writes r under key and returns the number of bytes stored. It never
	// replaces an existing object.
	Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) (int64, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Remove deletes one object. A missing object is not an error.
	Remove(ctx context.Context, key string) error
	// RemovePrefix deletes every object under prefix + "/".
	RemovePrefix(ctx context.Context, prefix string) error
	// Location is the backend specific address persisted as storage_path.
	Location(key string) string
}

// ValidateKey rejects empty, absolute, or dot segment keys.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
