package observability

import (
	"io"
	"log/slog"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates the run logger and sets it as the slog default. Without a
// file it logs to stdout; with one it writes to a size-rotated log file.
func NewLogger(level, format, file string) (*slog.Logger, io.Closer) {
	if file == "" {
		return sharedobs.NewLogger(level, format), nopCloser{}
	}

	w := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    100, // megabytes
		MaxBackups: 10,
		Compress:   true,
	}
	logger := slog.New(newHandler(w, level, format))
	slog.SetDefault(logger)
	return logger, w
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
