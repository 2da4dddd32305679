package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"", "console", "json"} {
		l, err := New("debug", format)
		if err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("format %q: debug not enabled", format)
		}
	}
	if _, err := New("loud", "json"); err == nil {
		t.Error("expected error for unknown level")
	}
}
