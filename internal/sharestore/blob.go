package sharestore

import (
	"sync"

	"github.com/karimrkhoury/ziplock/internal/common"
)

// LocalBlob is the creator's in-memory copy of the encrypted archive,
// kept so a download needs no network round trip. It is never persisted;
// after a restart only its absence is observable. Ownership belongs to
// the share record; Remove and Sweep revoke it exactly once.
type LocalBlob struct {
	mu      sync.Mutex
	data    []byte
	revoked bool
}

func NewLocalBlob(data []byte) *LocalBlob {
	return &LocalBlob{data: data}
}

// Bytes returns the cached archive bytes, or ErrBlobRevoked after Revoke.
func (b *LocalBlob) Bytes() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.revoked {
		return nil, common.ErrBlobRevoked
	}
	return b.data, nil
}

// Size returns the blob length in bytes, zero once revoked.
func (b *LocalBlob) Size() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.data))
}

// Revoke releases the cached bytes. A second call returns ErrBlobRevoked;
// revoking twice and never revoking are both bugs the tests guard against.
func (b *LocalBlob) Revoke() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.revoked {
		return common.ErrBlobRevoked
	}
	common.WipeBytes(b.data)
	b.data = nil
	b.revoked = true
	return nil
}

// Revoked reports whether the blob has been released.
func (b *LocalBlob) Revoked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revoked
}
