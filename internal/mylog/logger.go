package mylog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/habiliai/agenteat/config"
	"github.com/habiliai/agenteat/errors"
	"github.com/jcooky/go-din"
	"github.com/lmittmann/tint"
)

type Logger = slog.Logger

func ToLogLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(level slog.Level, w io.Writer) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		AddSource:  level == slog.LevelDebug,
	})
}

func NewLogger(logLevel string, logHandler string) *Logger {
	slogLevel := ToLogLevel(logLevel)

	var handler slog.Handler
	switch logHandler {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: true,
			Level:     slogLevel,
		})
	default:
		handler = newHandler(slogLevel, os.Stderr)
	}

	return slog.New(handler)
}

// NewLoggerWithConfig builds the process logger. In debug mode records are
// also written to <LogDir>/<name>.log; the returned closer releases that file.
func NewLoggerWithConfig(conf *config.LogConfig, name string) (*Logger, io.Closer, error) {
	logger := NewLogger(conf.Level(), conf.LogHandler)
	if !conf.IsDebug() {
		return logger.With(slog.String("logger", name)), nopCloser{}, nil
	}

	if err := os.MkdirAll(conf.LogDir, 0755); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create log dir %s", conf.LogDir)
	}
	f, err := os.OpenFile(filepath.Join(conf.LogDir, name+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open log file")
	}

	fileHandler := slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	logger = slog.New(fanout{logger.Handler(), fileHandler})

	return logger.With(slog.String("logger", name)), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func Err(err error) slog.Attr {
	return slog.Any("err", err)
}

func init() {
	din.RegisterT(func(c *din.Container) (*Logger, error) {
		conf, err := din.GetT[*config.Config](c)
		if err != nil {
			return nil, err
		}

		logger, closer, err := NewLoggerWithConfig(&conf.Log, "agenteat")
		if err != nil {
			return nil, err
		}
		c.RegisterOnShutdown(func(_ context.Context) {
			_ = closer.Close()
		})

		return logger, nil
	})
}
