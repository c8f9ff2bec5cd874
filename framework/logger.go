package framework

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop()

// InitLogger builds the logger for env and installs it as zap's global, so
// packages logging through zap.L() (orm among them) share it. The test
// environment gets a no-op logger.
func InitLogger(env string) error {
	if env == "" {
		env = "development"
	}

	var logger *zap.Logger
	switch env {
	case "test":
		logger = zap.NewNop()
	case "production":
		config := zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err := config.Build()
		if err != nil {
			return err
		}
		logger = l
	default:
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err := config.Build()
		if err != nil {
			return err
		}
		logger = l
	}

	Log = logger
	zap.ReplaceGlobals(Log)
	return nil
}

func FromContext(ctx context.Context) *zap.Logger {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		return Log.With(zap.String("request_id", reqID))
	}
	return Log
}
