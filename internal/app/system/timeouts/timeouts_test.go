package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})

	got := Current()
	if got.Short != 7*time.Second {
		t.Errorf("Short: got %v, want 7s", got.Short)
	}
	if got.Ping != DefaultPing || got.Medium != DefaultMedium {
		t.Errorf("zero values should keep defaults, got %+v", got)
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Ping: time.Second, Short: time.Second, Medium: time.Second})
	Reset()

	if Ping() != DefaultPing || Short() != DefaultShort || Medium() != DefaultMedium {
		t.Errorf("Reset did not restore defaults: %+v", Current())
	}
}

func TestWithTimeout_LogsOnDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "render widget")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.ContextMap()["operation"] != "render widget" {
		t.Errorf("operation field: got %v", entry.ContextMap()["operation"])
	}
}

func TestWithTimeout_QuietOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, cancel := WithTimeout(context.Background(), time.Minute, zap.New(core), "render widget")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
