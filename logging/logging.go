package logging

// Package logging builds the process-wide zerolog logger: human-readable
// console output on stderr, optionally teed into a size-rotated log file.

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger at the given level. When file is non-empty, log lines
// are also written there with rotation, so long proving runs on servers keep
// a bounded on-disk history.
func New(level, file string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if file != "" {
		rotated := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    20, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
		}
		w = zerolog.MultiLevelWriter(w, rotated)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
