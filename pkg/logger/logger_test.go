package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"fotofetch/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name:    "config with file output",
			cfg:     &config.LoggingConfig{Level: "info", File: "/tmp/fotofetch-test.log"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}

			if tt.cfg.File != "" {
				os.Remove(tt.cfg.File)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(&buf).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	logger := &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}

	t.Run("Debug", func(t *testing.T) {
		buf.Reset()
		logger.Debug("debug message")
		if !strings.Contains(buf.String(), "debug message") {
			t.Error("expected debug message in output")
		}
	})

	t.Run("Info", func(t *testing.T) {
		buf.Reset()
		logger.Info("info message")
		if !strings.Contains(buf.String(), "info message") {
			t.Error("expected info message in output")
		}
	})

	t.Run("WithField", func(t *testing.T) {
		buf.Reset()
		logger.WithField("url", "https://example.com/a.jpg").Info("field message")
		out := buf.String()
		if !strings.Contains(out, "field message") || !strings.Contains(out, "a.jpg") {
			t.Errorf("expected field in output, got %q", out)
		}
	})

	t.Run("WithFields", func(t *testing.T) {
		buf.Reset()
		logger.WithFields(map[string]interface{}{
			"file":  "a.jpg",
			"bytes": 1024,
		}).Info("fields message")
		out := buf.String()
		if !strings.Contains(out, "a.jpg") || !strings.Contains(out, "1024") {
			t.Errorf("expected fields in output, got %q", out)
		}
	})

	t.Run("WithError", func(t *testing.T) {
		buf.Reset()
		logger.WithError(os.ErrNotExist).Error("error message")
		if !strings.Contains(buf.String(), "file does not exist") {
			t.Error("expected wrapped error in output")
		}
	})
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("hello")
	tl.WithField("url", "x").Warn("careful")
	tl.WithError(os.ErrClosed).Error("boom")

	if !tl.HasMessage("hello") {
		t.Error("expected captured info message")
	}
	if len(tl.GetMessagesByLevel("WARN")) != 1 {
		t.Error("expected one warning")
	}
	if !tl.HasError() {
		t.Error("expected an error to be recorded")
	}

	tl.Clear()
	if len(tl.GetMessages()) != 0 {
		t.Error("expected no messages after Clear")
	}
}
