// Package logger provides a structured logging interface for fotofetch.
//
// It wraps the zerolog library to provide a clean API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output alongside the console
// - Global logger instance for easy access
//
// Basic usage:
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	err := logger.Initialize(cfg)
//
//	logger.Info("run started")
//	logger.WithField("url", imageURL).Info("download complete")
//	logger.WithError(err).Error("download failed")
package logger
