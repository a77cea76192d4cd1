// Package fetch opens dataset sources for reading;
// handles local files and standard input with size limits.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// MaxFileSizeBytes caps a single source to prevent memory overload.
const MaxFileSizeBytes = 256 * 1024 * 1024

var (
	// ErrNotFound is returned for a source path that does not exist.
	ErrNotFound = errors.New("source does not exist")
	// ErrTooLarge is returned when a source exceeds its size limit.
	ErrTooLarge = errors.New("source exceeds size limit")
)

// limitedReadCloser wraps an io.ReadCloser to enforce size limits
type limitedReadCloser struct {
	io.ReadCloser
	N      int64  // max bytes remaining
	source string // for error messages
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		// content ending exactly at the limit is fine
		var probe [1]byte
		m, perr := l.ReadCloser.Read(probe[:])
		if m == 0 && perr != nil {
			return 0, perr
		}
		if m == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: content from %q", ErrTooLarge, l.source)
	}
	if int64(len(p)) > l.N {
		p = p[0:l.N]
	}
	n, err = l.ReadCloser.Read(p)
	l.N -= int64(n)
	return
}

// GetContent opens source and returns an io.ReadCloser.
// It supports two types of sources:
//   - "-" reads from standard input (closing it leaves stdin open)
//   - everything else is treated as a local file path
//
// ctx is checked before opening; reads themselves are not interruptible.
func GetContent(ctx context.Context, source string) (io.ReadCloser, error) {
	return GetContentLimit(ctx, source, MaxFileSizeBytes)
}

// GetContentLimit is GetContent with an explicit byte limit.
func GetContentLimit(ctx context.Context, source string, limit int64) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if source == "-" {
		return &limitedReadCloser{
			ReadCloser: io.NopCloser(os.Stdin),
			N:          limit,
			source:     "stdin",
		}, nil
	}
	return fetchFile(source, limit)
}

// fetchFile opens a local file for reading with better error messages
func fetchFile(path string, limit int64) (io.ReadCloser, error) {
	// check if file exists and get size
	fileInfo, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: file %q", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access file %q: %w", path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}

	// check file size before opening to prevent memory overload
	if fileInfo.Size() > limit {
		return nil, fmt.Errorf("%w: file %q is %d bytes (limit %d)", ErrTooLarge, path, fileInfo.Size(), limit)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}

	// the file may grow between Stat and Read
	return &limitedReadCloser{
		ReadCloser: file,
		N:          limit,
		source:     path,
	}, nil
}
