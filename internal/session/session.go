// Package session provides the per-device identity used to tell a share's
// creator apart from any other visitor. The id is created once, persists
// in the client's durable store with no expiry, and never leaves the
// device. It carries no cryptographic guarantee: the creator/visitor
// split is a local convenience, not an access control.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const metadataKey = "session_id"

// MetadataStore is the durable key-value surface the session id lives in.
// Satisfied by sharestore.MetadataRepository.
type MetadataStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Session is the process-wide share identity, constructed once at startup
// and injected into the components that need it.
type Session struct {
	ID string
}

// GetOrCreate returns the stored session, generating and persisting a
// fresh random id on the very first run for this device.
func GetOrCreate(ctx context.Context, store MetadataStore) (*Session, error) {
	v, err := store.Get(ctx, metadataKey)
	if err != nil {
		return nil, fmt.Errorf("reading session id: %w", err)
	}
	if len(v) > 0 {
		return &Session{ID: string(v)}, nil
	}

	id := uuid.NewString()
	if err := store.Set(ctx, metadataKey, []byte(id)); err != nil {
		return nil, fmt.Errorf("persisting session id: %w", err)
	}
	return &Session{ID: id}, nil
}
