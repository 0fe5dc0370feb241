// Package common defines shared constants, sentinel errors and the typed
// failure kinds used across client and server layers of ZipLock. Callers
// match sentinels with errors.Is and typed failures with errors.As.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrExpiredLink marks a share whose server-side object is gone.
	// A 404 from resolve is authoritative over any local TTL guess.
	ErrExpiredLink = errors.New("share link expired")

	// ErrBlobRevoked is returned when a local blob reference is used or
	// revoked after it has already been released.
	ErrBlobRevoked = errors.New("local blob already revoked")
)

// ValidationError rejects a publish request before any work starts.
// It never reaches the network.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// EncryptionError wraps an archive codec failure (source read error,
// cipher failure). The job is discarded; the user may retry from scratch.
type EncryptionError struct {
	Err error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("encryption failed: %v", e.Err)
}

func (e *EncryptionError) Unwrap() error { return e.Err }

// UploadError wraps a network or server failure during upload. It is kept
// distinct from EncryptionError so callers can tell the user compression
// succeeded but sharing did not; the archive and password survive for a
// retry of the upload step alone.
type UploadError struct {
	StatusCode int
	TooLarge   bool
	Err        error
}

func (e *UploadError) Error() string {
	if e.TooLarge {
		return fmt.Sprintf("upload rejected: payload too large (status %d)", e.StatusCode)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload failed: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
