// Package storage keeps attachment blobs outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"condomanager/internal/uuid"
)

// MaxFileSize is the largest accepted attachment.
const MaxFileSize int64 = 10 << 20

var (
	// ErrFileTooLarge is returned when a blob exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	// ErrNotFound is returned when no blob exists at a path.
	ErrNotFound = errors.New("file not found")
)

// FileStore persists attachment blobs.
type FileStore interface {
	// Store writes r and returns the path it can be read back from and the
	// number of bytes written. Blobs over MaxFileSize are rejected.
	Store(ctx context.Context, r io.Reader, suggestedName, contentType string) (string, int64, error)
	// Read opens the blob at p. The caller must close it.
	Read(ctx context.Context, p string) (io.ReadCloser, error)
	// Delete removes the blob at p. Deleting a missing blob is not an error.
	Delete(ctx context.Context, p string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName keeps a file name safe for use inside a storage key.
func SanitizeName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "file"
	}
	if len(base) > 100 {
		base = base[len(base)-100:]
	}
	return base
}

// NewKey builds a unique, date-partitioned storage key for suggestedName.
func NewKey(suggestedName string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%s", now.UTC().Format("2006/01"), uuid.New(), SanitizeName(suggestedName))
}

// limitReader reads at most MaxFileSize bytes and reports overflow.
type limitReader struct {
	r        io.Reader
	n        int64
	exceeded bool
}

func newLimitReader(r io.Reader) *limitReader {
	return &limitReader{r: r, n: MaxFileSize}
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.n < 0 {
		l.exceeded = true
		return 0, ErrFileTooLarge
	}
	// Allow one byte past the limit so an exact-size file is accepted.
	if int64(len(p)) > l.n+1 {
		p = p[:l.n+1]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if l.n < 0 {
		l.exceeded = true
		return n, ErrFileTooLarge
	}
	return n, err
}
