package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/karimrkhoury/ziplock/internal/cryptox"
)

// Open unseals a blob produced by Writer and returns the zip contents.
func Open(blob []byte, password string) (*zip.Reader, error) {
	plain, err := cryptox.Open(blob, []byte(password))
	if err != nil {
		return nil, fmt.Errorf("unsealing archive: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(plain), int64(len(plain)))
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return zr, nil
}

// Extract unseals a blob and writes every entry into dir. Entry names are
// flat by construction, but path traversal is rejected anyway.
func Extract(blob []byte, password, dir string) error {
	zr, err := Open(blob, password)
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		if strings.Contains(f.Name, "..") || strings.ContainsRune(f.Name, os.PathSeparator) {
			return fmt.Errorf("refusing entry name %q", f.Name)
		}
		if err := extractFile(f, filepath.Join(dir, f.Name)); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return nil
}
