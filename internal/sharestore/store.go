// Package sharestore is the client's durable record of published shares.
// Records live in SQLite keyed by the public share id; the creator's copy
// carries the plaintext password and an in-memory blob reference, while a
// reader under any other session sees a redacted view. Records expire
// 24 hours after creation, mirroring (best-effort, not authoritatively)
// the server-side object sweep.
package sharestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karimrkhoury/ziplock/internal/archive"
	"github.com/karimrkhoury/ziplock/internal/common"
	"github.com/karimrkhoury/ziplock/internal/dbx"
	"github.com/karimrkhoury/ziplock/internal/logging"
)

// TTL is the local record lifetime. The server's object sweep enforces
// the same nominal deadline independently; a 404 from resolve always wins
// over this local guess.
const TTL = 24 * time.Hour

// Clock abstracts time so TTL behavior is testable deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Record describes one published archive. Password is only ever present
// on the creator's own device; Blob is process-local and never serialized.
type Record struct {
	ShareID        string        `json:"share_id"`
	OwnerSessionID string        `json:"owner_session_id"`
	Password       string        `json:"password,omitempty"`
	DownloadURL    string        `json:"download_url,omitempty"`
	Stats          archive.Stats `json:"stats"`
	CreatedAt      time.Time     `json:"created_at"`

	Blob *LocalBlob `json:"-"`
}

// IsOwned reports whether the record belongs to the given session.
func (r *Record) IsOwned(sessionID string) bool {
	return r.OwnerSessionID == sessionID
}

// Store reads and writes share records for one device. A single process
// is the unit of concurrency; the mutex only protects the ephemeral blob
// map against the sweep racing a put.
type Store struct {
	db        *sql.DB
	sessionID string
	clock     Clock
	log       logging.Logger

	mu    sync.Mutex
	blobs map[string]*LocalBlob
}

// Option configures a Store.
type Option func(*Store)

// WithClock substitutes the time source, for tests.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

func New(db *sql.DB, sessionID string, log logging.Logger, opts ...Option) *Store {
	s := &Store{
		db:        db,
		sessionID: sessionID,
		clock:     systemClock{},
		log:       log,
		blobs:     make(map[string]*LocalBlob),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put writes a record under shareID, stamping CreatedAt and the owning
// session. A blob already cached under the same id is revoked before
// being superseded.
func (s *Store) Put(ctx context.Context, shareID string, rec Record, blob *LocalBlob) error {
	rec.ShareID = shareID
	rec.OwnerSessionID = s.sessionID
	rec.CreatedAt = s.clock.Now().UTC()

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", shareID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO share_records (share_id, payload, created_at) VALUES (?, ?, ?)
		ON CONFLICT(share_id) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at
	`, shareID, payload, rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("storing record %s: %w", shareID, err)
	}

	s.mu.Lock()
	if old, ok := s.blobs[shareID]; ok && old != blob {
		if rerr := old.Revoke(); rerr != nil && !errors.Is(rerr, common.ErrBlobRevoked) {
			s.log.Warn(ctx, "failed to revoke superseded blob", "share_id", shareID, "error", rerr)
		}
	}
	if blob != nil {
		s.blobs[shareID] = blob
	} else {
		delete(s.blobs, shareID)
	}
	s.mu.Unlock()

	return nil
}

// Get returns the record for shareID, or common.ErrNotFound when absent
// or expired. Corrupt rows are removed silently and reported as absent.
// A record owned by another session comes back without its password or
// blob reference.
func (s *Store) Get(ctx context.Context, shareID string) (*Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM share_records WHERE share_id = ?`, shareID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading record %s: %w", shareID, err)
	}

	var rec Record
	if uerr := json.Unmarshal(payload, &rec); uerr != nil || rec.ShareID == "" || rec.OwnerSessionID == "" {
		// Self-heal: a record we cannot parse is treated as absent and
		// proactively dropped rather than surfaced to the caller.
		s.log.Warn(ctx, "removing corrupt share record", "share_id", shareID)
		if rmErr := s.Remove(ctx, shareID); rmErr != nil {
			s.log.Error(ctx, "failed to remove corrupt record", "share_id", shareID, "error", rmErr)
		}
		return nil, common.ErrNotFound
	}

	if s.clock.Now().Sub(rec.CreatedAt) > TTL {
		if rmErr := s.Remove(ctx, shareID); rmErr != nil {
			s.log.Error(ctx, "failed to remove expired record", "share_id", shareID, "error", rmErr)
		}
		return nil, common.ErrNotFound
	}

	if !rec.IsOwned(s.sessionID) {
		rec.Password = ""
		return &rec, nil
	}

	s.mu.Lock()
	rec.Blob = s.blobs[shareID]
	s.mu.Unlock()
	return &rec, nil
}

// Remove purges a record and revokes its blob reference, if any.
func (s *Store) Remove(ctx context.Context, shareID string) error {
	s.revokeBlob(ctx, shareID)

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM share_records WHERE share_id = ?`, shareID); err != nil {
		return fmt.Errorf("removing record %s: %w", shareID, err)
	}
	return nil
}

// revokeBlob drops and revokes the ephemeral blob for shareID. Revoking
// an already revoked blob is not an error here; the exactly-once
// guarantee lives in LocalBlob itself.
func (s *Store) revokeBlob(ctx context.Context, shareID string) {
	s.mu.Lock()
	blob, ok := s.blobs[shareID]
	delete(s.blobs, shareID)
	s.mu.Unlock()

	if ok {
		if err := blob.Revoke(); err != nil && !errors.Is(err, common.ErrBlobRevoked) {
			s.log.Warn(ctx, "failed to revoke blob", "share_id", shareID, "error", err)
		}
	}
}

// Sweep removes every record older than TTL, revoking blob references as
// it goes, and returns the number of records purged. It is run
// opportunistically on startup and teardown; the host gives us no
// reliable background execution.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-TTL).Unix()

	// Selecting and deleting in one transaction keeps the returned ids
	// exactly the set of rows removed.
	var expired []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT share_id FROM share_records WHERE created_at <= ?`, cutoff)
		if err != nil {
			return fmt.Errorf("listing expired records: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			expired = append(expired, id)
		}
		// The transaction owns a single connection; the cursor must be
		// drained and closed before the delete can run on it.
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM share_records WHERE created_at <= ?`, cutoff)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("sweeping expired records: %w", err)
	}

	for _, id := range expired {
		s.revokeBlob(ctx, id)
		s.log.Debug(ctx, "swept expired share record", "share_id", id)
	}
	return len(expired), nil
}

// List returns all live records owned by the current session, newest first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT share_id FROM share_records ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []*Record
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.IsOwned(s.sessionID) {
			out = append(out, rec)
		}
	}
	return out, nil
}
