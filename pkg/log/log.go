// Package log provides structured logging for the PSDR library.
//
// The package wraps zerolog behind a small Logger interface so estimator
// code logs through structured key/value pairs without depending on a
// concrete backend. Loggers are named per component and carry persistent
// fields added with With.
package log

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Standard structured logging keys used across the library.
const (
	ModelNameKey  = "model"
	ComponentKey  = "component"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "samples"
	GradientsKey  = "gradients"
	FeaturesKey   = "features"
	PairsKey      = "pairs"
	DurationMsKey = "duration_ms"
	IterationsKey = "iterations"
	ResidualKey   = "residual"
	CandidatesKey = "candidates"
)

// Standard operation and phase values.
const (
	OperationFit    = "fit"
	OperationBounds = "bounds"
	OperationSolve  = "solve"
	PhaseTraining   = "training"
	PhaseInference  = "inference"
)

// Logger is the structured logging interface used by estimators.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Logger
}

// LoggerProvider constructs named loggers for a backend.
type LoggerProvider interface {
	Named(name string) Logger
	SetLevel(level zerolog.Level)
}

var (
	mu       sync.RWMutex
	provider LoggerProvider = NewZerologProvider(os.Stderr)
)

// SetProvider replaces the global logger provider.
func SetProvider(p LoggerProvider) {
	mu.Lock()
	defer mu.Unlock()
	provider = p
}

// SetupLogger configures the global log level from a string such as
// "debug", "info", "warn" or "error". Unknown strings fall back to info.
func SetupLogger(level string) {
	mu.RLock()
	defer mu.RUnlock()
	provider.SetLevel(ToLogLevel(level))
}

// ToLogLevel converts a level string to a zerolog level.
func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// GetLogger returns the root logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return provider.Named("psdr")
}

// GetLoggerWithName returns a logger named after a component.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return provider.Named(name)
}

// LogError logs an error with a message through the root logger.
func LogError(err error, msg string) {
	GetLogger().Error(msg, "error", err)
}
