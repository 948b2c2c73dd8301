// Package logging builds the zap loggers used by the server and CLI.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/store"
)

// New returns a JSON production logger when production is true and a
// console development logger otherwise. level is a zap level name
// ("debug", "info", "warn", "error"); empty means info.
func New(level string, production bool) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}

	var config zap.Config
	if production {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// GuardObserver logs rejected mutations at WARN. Allowed decisions are
// logged at DEBUG.
func GuardObserver(logger *zap.Logger) store.DecisionObserver {
	return store.ObserverFunc(func(req guard.MutationRequest, d guard.Decision) {
		if d.Allowed() {
			logger.Debug("mutation allowed",
				zap.String("kind", string(req.Kind)),
				zap.String("operation", string(req.Operation)))
			return
		}
		v := d.Violation()
		logger.Warn("mutation rejected",
			zap.String("kind", string(v.Kind)),
			zap.String("operation", string(v.Operation)),
			zap.String("code", string(v.Code)),
			zap.Strings("fields", v.Fields))
	})
}
