// Package storage defines the object store port used by the conversion
// pipeline. The interface abstracts the underlying backend so that benchmark
// corpora can live on the local filesystem or in an S3 bucket.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// Store is the filesystem collaborator of the conversion pipeline.
type Store interface {
	// Read returns the full content of the object at path.
	// Returns ErrNotFound (wrapped) when the object does not exist.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores data at path, creating intermediate directories or
	// prefixes as needed.
	Write(ctx context.Context, path string, data []byte) error

	// Exists reports whether an object is present at path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the paths of all objects under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
