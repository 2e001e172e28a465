// Package logging wires zerolog for the three run modes: the TUI writes to
// a log file because it owns the terminal, the CLI and mock server write
// human-readable lines to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger construction
type Options struct {
	Debug bool
	// File, when set, receives JSON log lines instead of stderr
	File string
}

// New builds a logger and returns a close function for the underlying file
func New(opts Options) (zerolog.Logger, func() error, error) {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	var w io.Writer
	closeFn := func() error { return nil }

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	log := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return log, closeFn, nil
}
