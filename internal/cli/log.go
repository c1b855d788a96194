package cli

import (
	"fmt"
	"io"
	"log/slog"

	"charm.land/log/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger returns a terminal logger on stderr, or a JSON logger on a
// rotating file when file is set. The closer is nil for the terminal.
func newLogger(level, file string, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("--log-level: %w", err)
	}

	if file != "" {
		w := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), w, nil
	}

	h := log.NewWithOptions(stderr, log.Options{
		Level:  log.Level(lvl),
		Prefix: "tjdecode",
	})
	return slog.New(h), nil, nil
}
