package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	defaultMaxSizeMB = 10
	defaultMaxFiles  = 5
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Config selects where log records go and at which level.
type Config struct {
	Level string

	// FilePath is the JSON log file. Empty disables file logging.
	FilePath  string
	MaxSizeMB int
	MaxFiles  int

	// WriteToStderr copies every record to stderr.
	WriteToStderr bool
}

// DefaultConfig logs at info level to DefaultLogPath only, leaving stdout
// and stderr to command output.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		FilePath:  DefaultLogPath(),
		MaxSizeMB: defaultMaxSizeMB,
		MaxFiles:  defaultMaxFiles,
	}
}

// DebugConfig is DefaultConfig at debug level, mirrored to stderr.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.WriteToStderr = true
	return cfg
}

// Setup returns a JSON logger for cfg. The cleanup function flushes and
// closes the log file and must be called before exit.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	sinks := make([]io.Writer, 0, 2)
	cleanup := func() {}

	if cfg.FilePath != "" {
		size, files := cfg.MaxSizeMB, cfg.MaxFiles
		if size <= 0 {
			size = defaultMaxSizeMB
		}
		if files <= 0 {
			files = defaultMaxFiles
		}
		w, err := NewRotatingWriter(cfg.FilePath, size, files)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, w)
		cleanup = func() {
			_ = w.Sync()
			_ = w.Close()
		}
	}
	if cfg.WriteToStderr {
		sinks = append(sinks, os.Stderr)
	}

	out := io.Discard
	if len(sinks) > 0 {
		out = io.MultiWriter(sinks...)
	}
	h := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	return slog.New(h), cleanup, nil
}

// parseLevel maps a level name to slog. Unknown names log at info.
func parseLevel(name string) slog.Level {
	if l, ok := levels[strings.ToLower(name)]; ok {
		return l
	}
	return slog.LevelInfo
}

// ValidLevel reports whether name is a level parseLevel knows.
func ValidLevel(name string) bool {
	_, ok := levels[strings.ToLower(name)]
	return ok
}
