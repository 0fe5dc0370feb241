// Package cli wires the ziplock command line: share a selection of files,
// download someone else's share, and manage the local share record.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/karimrkhoury/ziplock/internal/client/config"
	"github.com/karimrkhoury/ziplock/internal/logging"
	"github.com/karimrkhoury/ziplock/internal/publish"
	"github.com/karimrkhoury/ziplock/internal/session"
	"github.com/karimrkhoury/ziplock/internal/sharestore"
	"github.com/karimrkhoury/ziplock/internal/transport"

	_ "modernc.org/sqlite"
)

// App holds the wired-up client.
type App struct {
	config   *config.Config
	db       *sql.DB
	session  *session.Session
	store    *sharestore.Store
	client   *transport.Client
	pipeline *publish.Pipeline
	log      logging.Logger

	out    io.Writer
	reader *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sharestore.OpenDatabase(ctx, filepath.Join(c.DataDir, "ziplock.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	meta := sharestore.NewMetadataRepository(db)
	sess, err := session.GetOrCreate(ctx, meta)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	store := sharestore.New(db, sess.ID, log)

	// Records past their lifetime never resurface; drop them on the way in.
	if n, err := store.Sweep(ctx); err != nil {
		log.Warn(ctx, "startup sweep failed", "error", err)
	} else if n > 0 {
		log.Debug(ctx, "startup sweep removed expired shares", "count", n)
	}

	client := transport.NewClient(c.ServerURL, log)
	pipeline := publish.New(publish.Config{
		MaxTotalSize: c.MaxTotalSize,
		MinDuration:  c.MinDuration,
		ArchiveName:  c.ArchiveName,
	}, client, store, log)

	return &App{
		config:   c,
		db:       db,
		session:  sess,
		store:    store,
		client:   client,
		pipeline: pipeline,
		log:      log,
		out:      os.Stdout,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Close() error {
	// Matching sweep on the way out keeps the database from accumulating
	// expired records between rare invocations.
	if _, err := a.store.Sweep(context.Background()); err != nil {
		a.log.Warn(context.Background(), "teardown sweep failed", "error", err)
	}
	return a.db.Close()
}

// Run dispatches one subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "share":
		return a.share(ctx, rest)
	case "download":
		return a.download(ctx, rest)
	case "list":
		return a.list(ctx)
	case "reset":
		return a.reset(ctx)
	case "status":
		return a.status(ctx, rest)
	case "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `Usage: ziplock <command> [arguments]

Commands:
  share [-g] <file>...     zip, encrypt and publish files (-g generates a password)
  download <shareId> [dir] fetch a share and extract it
  list                     show your live shares
  status <shareId>         check whether a share link is still live
  reset                    forget all local share records

Flags (before the command):
  -s <url>   share server base URL
  -d <dir>   data directory
  -c <file>  JSON config file`)
}
