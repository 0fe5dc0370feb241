package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karimrkhoury/ziplock/internal/common"
	"github.com/karimrkhoury/ziplock/internal/sharestore"
)

// list prints the caller's live shares, newest first.
func (a *App) list(ctx context.Context) error {
	recs, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No live shares.")
		return nil
	}

	for _, rec := range recs {
		left := time.Until(rec.CreatedAt.Add(sharestore.TTL)).Round(time.Minute)
		fmt.Fprintf(a.out, "%s  %s  expires in %s\n",
			rec.ShareID, common.FormatSize(rec.Stats.OriginalSize), left)
	}
	return nil
}

// status asks the server whether a share link still resolves. The server
// is authoritative; the local record only says what we once published.
func (a *App) status(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ziplock status <shareId>")
	}
	shareID := args[0]

	if _, err := a.client.Resolve(ctx, shareID); err != nil {
		if errors.Is(err, common.ErrExpiredLink) {
			a.dropStaleRecord(ctx, shareID)
			fmt.Fprintf(a.out, "%s has expired.\n", shareID)
			return nil
		}
		return err
	}
	fmt.Fprintf(a.out, "%s is live: %s\n", shareID, a.client.ShareURL(shareID))
	return nil
}

// reset forgets every local share record. Objects already published stay
// on the server until the sweeper ages them out.
func (a *App) reset(ctx context.Context) error {
	recs, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := a.store.Remove(ctx, rec.ShareID); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "Forgot %d share record(s).\n", len(recs))
	return nil
}
