package logging

import (
	"github.com/GriffinCanCode/restmanager/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Name is the root logger name
const Name = "restmanager"

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"; empty picks the mode default
	Development bool
	OutputPaths []string // stderr when empty, stdout is reserved for reply bodies
}

// New builds a named logger. Production encodes JSON without sampling so
// every lifecycle is logged; development uses a colored console encoder.
func New(cfg Config) (*zap.Logger, error) {
	level, err := levelOf(cfg)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg.Sampling = nil
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.MessageKey = "message"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = cfg.OutputPaths
	if len(zapCfg.OutputPaths) == 0 {
		zapCfg.OutputPaths = []string{"stderr"}
	}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named(Name), nil
}

// FromConfig builds the logger described by the logging section. An
// unknown level falls back to the mode default; a logger that cannot be
// built at all degrades to a no-op.
func FromConfig(cfg config.LogConfig) *zap.Logger {
	logger, err := New(Config{Level: cfg.Level, Development: cfg.Development})
	if err == nil {
		return logger
	}
	logger, err = New(Config{Development: cfg.Development})
	if err != nil {
		return zap.NewNop()
	}
	logger.Warn("unknown log level, using default", zap.String("level", cfg.Level))
	return logger
}

func levelOf(cfg Config) (zapcore.Level, error) {
	if cfg.Level == "" {
		if cfg.Development {
			return zapcore.DebugLevel, nil
		}
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(cfg.Level)
}
