package logger

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger - Build the global zap logger. Output goes to logPath when set,
// otherwise to stderr; stdout is reserved for the MCP stdio transport.
func InitLogger(debug bool, logPath string) error {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	output := "stderr"
	if logPath != "" {
		output = logPath
	}
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{output}

	l, err := cfg.Build()
	if err != nil {
		return errors.Wrapf(err, "failed to build logger for %s", output)
	}

	zap.ReplaceGlobals(l)
	return nil
}

// Sync - Flush any buffered log entries
func Sync() {
	_ = zap.L().Sync()
}
