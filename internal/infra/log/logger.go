package logs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/fx"

	"restapi/config"
	"restapi/internal/errors"
)

const (
	defaultMaxAge       = 7 * 24 * time.Hour
	defaultRotationTime = 24 * time.Hour
)

// Params defines the parameters required for the logger
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
}

// New creates and initializes slog.Logger
func New(params Params) (*slog.Logger, error) {
	logCfg := params.Config.Env.Log

	// Parse log level from config
	level, err := parseLogLevel(logCfg.Level)
	if err != nil {
		return nil, err
	}

	out, closer, err := newOutput(logCfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		params.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return closer.Close()
			},
		})
	}

	return newLogger(out, level, logCfg.Pretty), nil
}

func newLogger(out io.Writer, level slog.Level, pretty bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if pretty {
		return slog.New(slog.NewTextHandler(out, opts))
	}

	return slog.New(slog.NewJSONHandler(out, opts))
}

// newOutput writes to stdout and, when a file pattern is configured, to a
// rotating file as well.
func newOutput(logCfg config.Log) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(logCfg.File) == "" {
		return os.Stdout, nil, nil
	}

	maxAge := logCfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	rotation := logCfg.RotationTime
	if rotation <= 0 {
		rotation = defaultRotationTime
	}

	rotator, err := rotatelogs.New(
		logCfg.File+".%Y%m%d",
		rotatelogs.WithLinkName(logCfg.File),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(rotation),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create rotating log file")
	}

	return io.MultiWriter(os.Stdout, rotator), rotator, nil
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level: %s", level)
	}
}
