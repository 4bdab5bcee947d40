// Package storage defines the object store contract the comparison engine
// reads documents from, plus local implementations for tests and tooling.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// TransientError marks a failure worth retrying (network blip, throttling).
// The engine retries these with backoff; anything else fails fast.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient storage error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// ObjectInfo describes a stored object without its contents.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the storage collaborator. The production backend is an
// S3-compatible bucket owned by the outer service layer; the engine only
// needs listing under a prefix and whole-object reads.
//
// List returns objects whose key starts with prefix, sorted by key so
// callers see deterministic order. Get returns ErrNotFound for missing
// keys and wraps retryable failures in TransientError.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Get(ctx context.Context, key string) ([]byte, error)
}
