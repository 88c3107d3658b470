package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New("debug", true)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled")
	}

	logger, err = New("error", false)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn level should be disabled at error level")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud", false); err == nil {
		t.Error("expected error for invalid level")
	}
}
