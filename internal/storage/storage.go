package storage

import (
	"context"
	"io"
	"strings"

	"github.com/brocante/apiserver/types"
)

// ObjectStorage defines the object operations the media flow needs:
// storing an upload and removing it again when a compensating delete
// is required.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Storage wraps an ObjectStorage backend with a stable API and knows
// how uploaded objects are addressed by clients.
type Storage struct {
	backend       ObjectStorage
	publicBaseURL string
}

// NewStorage constructs a Storage wrapper for the provided backend.
// publicBaseURL is the externally reachable prefix under which objects
// in the bucket can be fetched.
func NewStorage(backend ObjectStorage, publicBaseURL string) *Storage {
	return &Storage{
		backend:       backend,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Upload stores an object under key and returns the image reference
// clients use to render and the system uses to manage it later.
func (s *Storage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (types.ImageRef, error) {
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return types.ImageRef{}, err
	}
	bucket := s.backend.Bucket()
	return types.ImageRef{
		URL:         s.publicBaseURL + "/" + bucket + "/" + key,
		Bucket:      bucket,
		Key:         key,
		ContentType: contentType,
		Size:        size,
	}, nil
}

// Delete removes an object from the configured bucket.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}
