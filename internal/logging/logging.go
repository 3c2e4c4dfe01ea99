// Package logging sets up the application's diagnostic logger.
//
// The chat surface owns the terminal, so logs go to a file rather than
// stderr. An empty path disables logging entirely.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to the given file, creating parent
// directories as needed. The returned closer releases the file and is
// never nil. An empty path or an unwritable file yields a disabled
// logger.
func New(path string) (zerolog.Logger, io.Closer) {
	if path == "" {
		return zerolog.Nop(), nopCloser{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), nopCloser{}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}
	}
	logger := zerolog.New(f).With().Timestamp().Logger()
	return logger, f
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
