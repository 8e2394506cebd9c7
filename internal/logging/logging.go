// Package logging builds the structured logger shared by the CLI, the TUI
// and the background playback goroutines.
//
// When the interactive board owns the terminal, logs go to a file instead
// of stderr so they do not tear the frame.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const DefaultLevel = "info"

// New returns a logger writing to w at the named level. Unknown level names
// fall back to info.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "mazerun",
		ReportTimestamp: true,
	})
}

// Open returns a logger appending to path, or to stderr when path is empty.
// The returned closer must be called on exit.
func Open(path, level string) (*log.Logger, io.Closer, error) {
	if path == "" {
		return New(os.Stderr, level), nopCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}

// Discard is a logger for tests and library callers that pass nil.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
