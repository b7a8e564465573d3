// Package upload accepts document uploads and stages them on local disk.
//
// The Gate rejects anything that is not a PDF or is larger than MaxFileSize,
// writes accepted files under a generated name and hands back a TempFile the
// caller must Release once processing is over:
//
//	tmp, err := gate.Store(ctx, "pdfFile", file)
//	if err != nil {
//	    return err
//	}
//	defer tmp.Release()
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sakif/study-cards/internal/apperror"
)

// MaxFileSize is the largest accepted upload: 15 MiB.
const MaxFileSize int64 = 15 * 1024 * 1024

const (
	pdfExtension = ".pdf"
	pdfMediaType = "application/pdf"
)

// File describes one incoming upload as declared by the client.
type File struct {
	FileName    string    // original client-side name, e.g. "notes.pdf"
	ContentType string    // declared MIME type, parameters allowed
	Size        int64     // declared size in bytes
	Body        io.Reader // the file contents
}

// Gate validates and stores uploads. It is safe for concurrent use.
type Gate struct {
	dir      string
	maxBytes int64
}

// NewGate creates the upload directory if needed.
// maxBytes <= 0 selects MaxFileSize.
func NewGate(dir string, maxBytes int64) (*Gate, error) {
	if maxBytes <= 0 {
		maxBytes = MaxFileSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: creating directory %s: %w", dir, err)
	}
	return &Gate{dir: dir, maxBytes: maxBytes}, nil
}

// MaxBytes returns the configured size limit.
func (g *Gate) MaxBytes() int64 {
	return g.maxBytes
}

// Validate checks the declared size first, so an oversize file is reported
// as too large whatever its type.
func (g *Gate) Validate(f File) error {
	if f.Size > g.maxBytes {
		return apperror.FileTooLarge(g.maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(f.FileName))
	mediaType, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil || ext != pdfExtension || strings.ToLower(mediaType) != pdfMediaType {
		return apperror.InvalidFileType("Invalid file type. Only PDF files are allowed.")
	}

	return nil
}

// Store validates f and copies its body into the upload directory as
// <fieldName>-<unixMillis>-<9 random digits>.pdf.
//
// The size limit is enforced on the bytes actually read, not only on the
// declared Size. Nothing is left on disk when Store returns an error.
func (g *Gate) Store(ctx context.Context, fieldName string, f File) (*TempFile, error) {
	if err := g.Validate(f); err != nil {
		return nil, err
	}
	if f.Body == nil {
		return nil, apperror.ValidationFailed(fieldName, "No file uploaded. Please upload a PDF file.")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(g.dir, tempName(fieldName, time.Now()))
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("upload: creating temp file: %w", err)
	}

	// Read one byte past the limit so an oversize stream is detectable.
	n, copyErr := io.Copy(out, io.LimitReader(f.Body, g.maxBytes+1))
	closeErr := out.Close()

	switch {
	case copyErr != nil:
		os.Remove(path)
		return nil, fmt.Errorf("upload: writing temp file: %w", copyErr)
	case closeErr != nil:
		os.Remove(path)
		return nil, fmt.Errorf("upload: closing temp file: %w", closeErr)
	case n > g.maxBytes:
		os.Remove(path)
		return nil, apperror.FileTooLarge(g.maxBytes)
	}

	return &TempFile{
		Path:         path,
		OriginalName: strings.TrimSpace(f.FileName),
		Size:         n,
	}, nil
}

func tempName(fieldName string, now time.Time) string {
	if fieldName == "" {
		fieldName = "upload"
	}
	return fmt.Sprintf("%s-%d-%09d%s", fieldName, now.UnixMilli(), rand.IntN(1_000_000_000), pdfExtension)
}

// TempFile is an accepted upload staged on disk.
type TempFile struct {
	Path         string
	OriginalName string
	Size         int64
}

// Bytes reads the whole staged file.
func (t *TempFile) Bytes() ([]byte, error) {
	b, err := os.ReadFile(t.Path)
	if err != nil {
		return nil, fmt.Errorf("upload: reading %s: %w", t.Path, err)
	}
	return b, nil
}

// Release removes the staged file. Calling it again, or after the file is
// already gone, is not an error.
func (t *TempFile) Release() error {
	if t == nil || t.Path == "" {
		return nil
	}
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("upload: removing %s: %w", t.Path, err)
	}
	return nil
}
