package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/limaJavier/ihtp/pkg/config"
)

const service = "ihtp"

// New builds the process logger. Every entry carries the service name and the environment, and goes to
// stderr so stdout stays free for the command-line summary
func New(cfg *config.Config) (*zap.Logger, error) {
	zapCfg, err := zapConfig(cfg)
	if err != nil {
		return nil, err
	}
	return zapCfg.Build()
}

func zapConfig(cfg *config.Config) (zap.Config, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	}

	zapCfg.Encoding = cfg.Log.Format
	if zapCfg.Encoding == "" {
		zapCfg.Encoding = "json"
	}

	if cfg.Log.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			return zap.Config{}, fmt.Errorf("invalid log level: %w", err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.InitialFields = map[string]any{
		"service": service,
		"env":     cfg.Env,
	}
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg, nil
}
