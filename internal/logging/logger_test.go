package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		development bool
		debug       bool
	}{
		{name: "development logs debug", development: true, debug: true},
		{name: "production starts at info", development: false, debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, err := New(tt.development)
			if err != nil {
				t.Fatalf("New(%v) error = %v", tt.development, err)
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush

			if got := logger.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
				t.Fatalf("debug enabled = %v; want %v", got, tt.debug)
			}
			if !logger.Core().Enabled(zapcore.InfoLevel) {
				t.Fatal("expected info level to be enabled")
			}
			if ce := logger.Check(zapcore.InfoLevel, "logger ready"); ce == nil || ce.LoggerName != "pgrapher" {
				t.Fatalf("expected logger named pgrapher, got %+v", ce)
			}
		})
	}
}
