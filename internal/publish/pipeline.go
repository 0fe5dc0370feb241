// Package publish drives one share from file selection to published link.
// The pipeline is a one-shot state machine: Idle, Validating, Archiving,
// Uploading, then Published or Failed. Validation failures leave the
// pipeline in Idle so the caller can fix the selection and run again.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/karimrkhoury/ziplock/internal/archive"
	"github.com/karimrkhoury/ziplock/internal/common"
	"github.com/karimrkhoury/ziplock/internal/logging"
	"github.com/karimrkhoury/ziplock/internal/progress"
	"github.com/karimrkhoury/ziplock/internal/sharestore"
	"github.com/karimrkhoury/ziplock/internal/transport"
)

// State is the pipeline's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateArchiving
	StateUploading
	StatePublished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateArchiving:
		return "archiving"
	case StateUploading:
		return "uploading"
	case StatePublished:
		return "published"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MinPasswordLength counts UTF-16 code units, not bytes or runes, so
// limits agree with what web-based visitors see in their unlock form.
const MinPasswordLength = 8

// File is one selected input.
type File struct {
	Name   string
	Size   int64
	Source io.Reader
}

// Job is one publish request.
type Job struct {
	Files    []File
	Password string
}

// Uploader is the slice of the share server the pipeline needs.
type Uploader interface {
	Upload(ctx context.Context, blob []byte, filename string, onProgress transport.UploadProgressFunc) (*transport.UploadResult, error)
}

// Config carries the pipeline's tunables.
type Config struct {
	// MaxTotalSize bounds the sum of selected file sizes in bytes.
	MaxTotalSize int64

	// MinDuration is the floor on perceived compression time. Zero
	// disables the synthetic ramp and compression maps straight onto
	// its full band.
	MinDuration time.Duration

	// ArchiveName is the filename sent with the upload.
	ArchiveName string
}

// Result is a successfully published share.
type Result struct {
	ShareID     string
	DownloadURL string
	Stats       archive.Stats
	Blob        *sharestore.LocalBlob
}

// Pipeline publishes jobs one at a time.
type Pipeline struct {
	cfg      Config
	uploader Uploader
	store    *sharestore.Store
	log      logging.Logger

	mu    sync.Mutex
	state State
}

func New(cfg Config, uploader Uploader, store *sharestore.Store, log logging.Logger) *Pipeline {
	if cfg.ArchiveName == "" {
		cfg.ArchiveName = "ziplocked-files.zip"
	}
	return &Pipeline{cfg: cfg, uploader: uploader, store: store, log: log, state: StateIdle}
}

// State returns the current lifecycle position.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run validates, archives, uploads and records one job. On validation
// failure the state returns to Idle; any later failure ends in Failed
// with the composer reset to zero.
func (p *Pipeline) Run(ctx context.Context, job Job, comp *progress.Composer) (*Result, error) {
	p.setState(StateValidating)
	if err := p.validate(job); err != nil {
		p.setState(StateIdle)
		return nil, err
	}

	p.setState(StateArchiving)
	blob, stats, err := p.compress(ctx, job, comp)
	if err != nil {
		p.setState(StateFailed)
		comp.Fail()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &common.EncryptionError{Err: err}
	}

	p.setState(StateUploading)
	res, err := p.uploader.Upload(ctx, blob, p.cfg.ArchiveName, func(sent, total int64) {
		if total > 0 {
			comp.Report(progress.PhaseUpload, float64(sent)/float64(total))
		}
	})
	if err != nil {
		p.setState(StateFailed)
		comp.Fail()
		return nil, err
	}

	local := sharestore.NewLocalBlob(blob)
	rec := sharestore.Record{
		Password:    job.Password,
		DownloadURL: res.DownloadURL,
		Stats:       stats,
	}
	if err := p.store.Put(ctx, res.ShareID, rec, local); err != nil {
		// The share is live on the server; a local bookkeeping failure
		// must not hide that from the user.
		p.log.Warn(ctx, "recording share locally failed", "share_id", res.ShareID, "error", err)
	}

	comp.Complete()
	p.setState(StatePublished)
	p.log.Info(ctx, "share published", "share_id", res.ShareID,
		"original_size", stats.OriginalSize, "compressed_size", stats.CompressedSize)

	return &Result{
		ShareID:     res.ShareID,
		DownloadURL: res.DownloadURL,
		Stats:       stats,
		Blob:        local,
	}, nil
}

func (p *Pipeline) validate(job Job) error {
	if len(job.Files) == 0 {
		return &common.ValidationError{Reason: "no files selected"}
	}
	var total int64
	for _, f := range job.Files {
		total += f.Size
	}
	if p.cfg.MaxTotalSize > 0 && total > p.cfg.MaxTotalSize {
		return &common.ValidationError{Reason: fmt.Sprintf(
			"selection is %s, the limit is %s",
			common.FormatSize(total), common.FormatSize(p.cfg.MaxTotalSize))}
	}
	if len(utf16.Encode([]rune(job.Password))) < MinPasswordLength {
		return &common.ValidationError{Reason: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	return nil
}

// compress writes every file into the encrypted archive. With a minimum
// duration configured, a synthetic timer ramp and the real compression
// both feed the shared ramp band and the pipeline waits for the slower
// of the two before declaring compression done.
func (p *Pipeline) compress(ctx context.Context, job Job, comp *progress.Composer) ([]byte, archive.Stats, error) {
	compressionPhase := progress.PhaseCompression
	rampCtx, cancelRamp := context.WithCancel(ctx)
	defer cancelRamp()

	rampDone := make(chan struct{})
	if p.cfg.MinDuration > 0 {
		compressionPhase = progress.PhaseRamp
		go p.ramp(rampCtx, comp, rampDone)
	} else {
		close(rampDone)
	}

	// The ramp must be fully stopped before the caller resets the
	// composer, or a late tick would raise the display again.
	abort := func(err error) ([]byte, archive.Stats, error) {
		cancelRamp()
		<-rampDone
		return nil, archive.Stats{}, err
	}

	var total int64
	for _, f := range job.Files {
		total += f.Size
	}

	w := archive.NewWriter(job.Password)
	var consumedBefore int64
	for _, f := range job.Files {
		before := consumedBefore
		_, err := w.AddEntry(ctx, f.Name, f.Source, f.Size, func(consumed, _ int64) {
			if total > 0 {
				comp.Report(compressionPhase, float64(before+consumed)/float64(total))
			}
		})
		if err != nil {
			return abort(err)
		}
		consumedBefore += f.Size
	}

	blob, stats, err := w.Finish()
	if err != nil {
		return abort(err)
	}

	select {
	case <-rampDone:
	case <-ctx.Done():
		return abort(ctx.Err())
	}

	// Both sources have finished; close out the compression band so the
	// upload starts from its floor.
	comp.Report(progress.PhaseCompression, 1.0)
	return blob, stats, nil
}

func (p *Pipeline) ramp(ctx context.Context, comp *progress.Composer, done chan<- struct{}) {
	defer close(done)

	const steps = 40
	step := p.cfg.MinDuration / steps
	t := time.NewTicker(step)
	defer t.Stop()

	for i := 1; i <= steps; i++ {
		select {
		case <-t.C:
			comp.Report(progress.PhaseRamp, float64(i)/steps)
		case <-ctx.Done():
			return
		}
	}
}
