package storage

import (
	"context"
	"time"

	"github.com/karimrkhoury/ziplock/internal/logging"
)

// SweepMaxAge is how long an uploaded archive stays downloadable. Expiry
// is enforced by deletion; a share link is dead exactly when its object
// is gone.
const SweepMaxAge = 24 * time.Hour

// Sweeper deletes archives older than the allowed age.
type Sweeper struct {
	store  ObjectStore
	maxAge time.Duration
	log    logging.Logger

	now func() time.Time
}

func NewSweeper(store ObjectStore, maxAge time.Duration, log logging.Logger) *Sweeper {
	return &Sweeper{store: store, maxAge: maxAge, log: log, now: time.Now}
}

// Run performs one sweep over the upload prefix and returns how many
// objects were deleted.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	infos, err := s.store.List(ctx, KeyPrefix)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.maxAge)
	var stale []string
	for _, info := range infos {
		if info.LastModified.Before(cutoff) {
			stale = append(stale, info.Key)
			s.log.Info(ctx, "expiring object", "key", info.Key,
				"age", s.now().Sub(info.LastModified).Round(time.Minute).String())
		}
	}

	if len(stale) == 0 {
		s.log.Info(ctx, "sweep found nothing to expire", "objects", len(infos))
		return 0, nil
	}

	if err := s.store.Delete(ctx, stale); err != nil {
		return 0, err
	}
	s.log.Info(ctx, "sweep finished", "deleted", len(stale), "kept", len(infos)-len(stale))
	return len(stale), nil
}
