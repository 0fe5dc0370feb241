package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/karimrkhoury/ziplock/internal/archive"
	"github.com/karimrkhoury/ziplock/internal/common"
)

// download fetches a share and extracts it into dir (default ".").
// For the creator's own share still on record, the password is filled in
// automatically; anyone else is asked for it.
func (a *App) download(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: ziplock download <shareId> [dir]")
	}
	shareID := args[0]
	dir := "."
	if len(args) == 2 {
		dir = args[1]
	}

	password, err := a.downloadPassword(ctx, shareID)
	if err != nil {
		return err
	}

	blob, err := a.fetchBlob(ctx, shareID)
	if err != nil {
		if errors.Is(err, common.ErrExpiredLink) {
			a.dropStaleRecord(ctx, shareID)
			return fmt.Errorf("this share link has expired")
		}
		return err
	}

	if err := archive.Extract(blob, password, dir); err != nil {
		return fmt.Errorf("unlocking archive: %w", err)
	}

	fmt.Fprintf(a.out, "Extracted %s into %s\n", common.FormatSize(int64(len(blob))), dir)
	return nil
}

// dropStaleRecord removes the local record after the server declared the
// share gone. The server's 404 is authoritative over the local TTL.
func (a *App) dropStaleRecord(ctx context.Context, shareID string) {
	if err := a.store.Remove(ctx, shareID); err != nil {
		a.log.Warn(ctx, "dropping stale share record failed", "share_id", shareID, "error", err)
	}
}

// fetchBlob prefers the locally kept archive for the creator's own share
// and falls back to the network.
func (a *App) fetchBlob(ctx context.Context, shareID string) ([]byte, error) {
	rec, err := a.store.Get(ctx, shareID)
	if err == nil && rec.Blob != nil {
		if b, err := rec.Blob.Bytes(); err == nil {
			return b, nil
		}
	}
	return a.client.Download(ctx, shareID)
}

func (a *App) downloadPassword(ctx context.Context, shareID string) (string, error) {
	rec, err := a.store.Get(ctx, shareID)
	if err == nil && rec.Password != "" {
		return rec.Password, nil
	}
	pw, err := GetPassword(a.out, "Password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeBytes(pw)
	return string(pw), nil
}
