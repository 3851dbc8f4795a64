// Package logging builds the zap logger shared by all components.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jimiolaniyan/vidhub/config"
)

// New creates a logger writing to stdout. Production uses the JSON encoder,
// everything else the console encoder, unless cfg.Format says otherwise.
func New(cfg config.Log, env string) *zap.Logger {
	return NewWithSyncer(cfg, env, zapcore.AddSync(os.Stdout))
}

// NewWithSyncer is New with an explicit destination.
func NewWithSyncer(cfg config.Log, env string, out zapcore.WriteSyncer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	format := cfg.Format
	if format == "" {
		format = "console"
		if strings.EqualFold(env, config.EnvProduction) {
			format = "json"
		}
	}

	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, out, ParseLevel(cfg.Level))

	return zap.New(core, zap.AddCaller())
}

// ParseLevel maps debug, info, warn and error to zap levels; anything else is info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
