package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker"} {
		l, err := NewLogger(env, "")
		if err != nil {
			t.Fatalf("%s: %v", env, err)
		}
		_ = l.Sync()
	}

	if _, err := NewLogger("staging", ""); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}

	dev, err := NewLogger("local", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dev.Core().Enabled(zapcore.DebugLevel) {
		t.Error("local should default to debug")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger("prod", "chatty"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestConfigFor_ProdDisablesSampling(t *testing.T) {
	cfg, err := configFor("prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Sampling != nil {
		t.Error("prod sampling should be disabled")
	}
	if cfg.EncoderConfig.TimeKey != "time" {
		t.Errorf("TimeKey = %q", cfg.EncoderConfig.TimeKey)
	}
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext must never return nil")
	}
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx = WithFields(ctx, zap.String("mode", "native"))
	FromContext(ctx).Info("search")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["mode"]; got != "native" {
		t.Errorf("mode = %v", got)
	}

	bare := context.Background()
	if WithFields(bare, zap.String("k", "v")) != bare {
		t.Error("context without a logger should be returned unchanged")
	}
}
