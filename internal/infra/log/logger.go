// Package logs builds the process-wide slog logger.
package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"authapp/config"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const redactedValue = "[REDACTED]"

// sensitiveKeys are attribute keys whose values never reach the log output,
// whatever the caller passed.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"passwordhash":  {},
	"token":         {},
	"authorization": {},
	"secret":        {},
}

// Params defines the parameters required for the logger
type Params struct {
	fx.In

	Config *config.Config
	Output io.Writer `optional:"true"`
}

// New creates the root logger tagged with the service name and environment.
func New(params Params) (*slog.Logger, error) {
	level, err := parseLogLevel(params.Config.Env.Log.Level)
	if err != nil {
		return nil, err
	}

	out := params.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactSensitive,
	}

	var handler slog.Handler
	if params.Config.Env.Log.Pretty {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	if name := params.Config.Env.ServiceName; name != "" {
		logger = logger.With(slog.String("service", name))
	}
	if env := params.Config.Env.Env; env != "" {
		logger = logger.With(slog.String("env", env))
	}

	return logger, nil
}

func redactSensitive(_ []string, attr slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, redactedValue)
	}

	return attr
}

// parseLogLevel converts string log level to slog.Level. Empty means info.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level: %s", level)
	}
}
