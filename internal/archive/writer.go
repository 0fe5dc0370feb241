// Package archive assembles the password-protected archive for one job:
// deduplicated entry names, deflate compression, and a sealed (encrypted)
// output blob. Entries are written strictly in the order supplied.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/karimrkhoury/ziplock/internal/cryptox"
	"github.com/karimrkhoury/ziplock/internal/iox"
)

// Stats describes one completed archive job. Immutable after Finish.
type Stats struct {
	OriginalSize      int64   `json:"original_size"`
	CompressedSize    int64   `json:"compressed_size"`
	ProcessingSeconds float64 `json:"processing_seconds"`
}

// EntryProgressFunc receives the running consumed byte count for the
// entry being added and the entry's total size.
type EntryProgressFunc func(consumed, total int64)

var errFinished = errors.New("archive already finished")

// Writer builds a single encrypted, compressed blob from a sequence of
// named byte sources. Not safe for concurrent use; one job owns one Writer.
type Writer struct {
	password []byte
	buf      bytes.Buffer
	zw       *zip.Writer
	names    NameSet

	originalSize int64
	started      time.Time
	finished     bool
}

// NewWriter begins an archive protected by password. Password strength is
// the caller's concern; the writer treats it as opaque.
func NewWriter(password string) *Writer {
	return &Writer{
		password: []byte(password),
		names:    NewNameSet(),
		started:  time.Now(),
	}
}

// AddEntry compresses one byte source into the archive under a collision-free
// name derived from name, and returns the name actually used. Progress is
// reported through onProgress as the source is consumed. The context is
// checked between read chunks so a cancelled job stops promptly.
func (w *Writer) AddEntry(ctx context.Context, name string, src io.Reader, size int64, onProgress EntryProgressFunc) (string, error) {
	if w.finished {
		return "", errFinished
	}
	if w.zw == nil {
		w.zw = zip.NewWriter(&w.buf)
	}

	unique := w.names.Unique(name)

	hdr := &zip.FileHeader{
		Name:     unique,
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	fw, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return "", fmt.Errorf("creating entry %s: %w", unique, err)
	}

	cr := &iox.CountingReader{R: src}
	if onProgress != nil {
		cr.OnRead = func(consumed int64) { onProgress(consumed, size) }
	}

	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, rerr := cr.Read(buf)
		if n > 0 {
			if _, werr := fw.Write(buf[:n]); werr != nil {
				return "", fmt.Errorf("writing entry %s: %w", unique, werr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", fmt.Errorf("reading source for %s: %w", unique, rerr)
		}
	}

	w.originalSize += cr.Count()
	return unique, nil
}

// Finish closes the archive, seals it under the job password and returns
// the blob with its stats. Codec errors propagate; they are never swallowed.
// The writer is unusable afterwards.
func (w *Writer) Finish() ([]byte, Stats, error) {
	if w.finished {
		return nil, Stats{}, errFinished
	}
	w.finished = true

	if w.zw == nil {
		w.zw = zip.NewWriter(&w.buf)
	}
	if err := w.zw.Close(); err != nil {
		return nil, Stats{}, fmt.Errorf("closing archive: %w", err)
	}

	blob, err := cryptox.Seal(w.buf.Bytes(), w.password)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("sealing archive: %w", err)
	}

	stats := Stats{
		OriginalSize:      w.originalSize,
		CompressedSize:    int64(len(blob)),
		ProcessingSeconds: time.Since(w.started).Seconds(),
	}
	return blob, stats, nil
}
