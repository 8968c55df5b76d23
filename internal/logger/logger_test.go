package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevelOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	log, err := New("production")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !log.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be enabled")
	}
}

func TestDevelopmentDefaultsToDebug(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	log, err := New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("development logger should log debug")
	}
}
