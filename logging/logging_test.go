package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Director != "" {
		t.Errorf("expected empty Director, got '%s'", cfg.Director)
	}
	if cfg.Level != "info" {
		t.Errorf("expected Level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected Format 'console', got '%s'", cfg.Format)
	}
	if !cfg.LogInTerminal {
		t.Error("expected LogInTerminal to be true")
	}
	if cfg.MaxSize != 50 {
		t.Errorf("expected MaxSize 50, got %d", cfg.MaxSize)
	}
}

func TestConfigTransportLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Config{Level: tt.level}
			if got := cfg.TransportLevel(); got != tt.expected {
				t.Errorf("TransportLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestApplyDefaultsKeepsFalseBooleans(t *testing.T) {
	cfg := Config{LogInTerminal: false}
	cfg.applyDefaults()

	if cfg.LogInTerminal {
		t.Error("applyDefaults must not flip LogInTerminal")
	}
	if cfg.FileName != "imagekit.log" {
		t.Errorf("expected FileName default, got '%s'", cfg.FileName)
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.LogInTerminal = false
	cfg.Director = dir
	cfg.Format = "json"

	logger := NewLogger(cfg)
	logger.Info("converted", zap.String("format", "webp"))
	_ = logger.Sync()
	defer CloseAllWriters()

	data, err := os.ReadFile(filepath.Join(dir, "imagekit.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log file to have content")
	}
}

func TestLoggerWith(t *testing.T) {
	logger := NewNop()
	child := logger.With(zap.String("component", "test"))

	if child == nil {
		t.Fatal("With returned nil")
	}
	if child == logger {
		t.Error("With should return a new logger instance")
	}
}

func TestWithContextAddsIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	ctx := SetBatchID(context.Background(), "batch-1")
	ctx, id := EnsureConversionID(ctx)
	if id == "" {
		t.Fatal("EnsureConversionID returned empty id")
	}

	WithContext(logger, ctx).Info("reencode")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["batch_id"] != "batch-1" {
		t.Errorf("batch_id = %v", fields["batch_id"])
	}
	if fields["conversion_id"] != id {
		t.Errorf("conversion_id = %v, want %v", fields["conversion_id"], id)
	}
}

func TestEnsureConversionIDKeepsExisting(t *testing.T) {
	ctx := SetConversionID(context.Background(), "abc")
	_, id := EnsureConversionID(ctx)
	if id != "abc" {
		t.Errorf("expected existing id to be kept, got %s", id)
	}
}

func TestContextLoggerStorage(t *testing.T) {
	logger := NewNop()
	ctx := ToContext(context.Background(), logger)

	if FromContext(ctx).Zap() != logger.Zap() {
		t.Error("FromContext should return the stored logger")
	}
}

func TestGlobalLogger(t *testing.T) {
	original := Global()
	defer SetGlobal(original)

	custom := NewNop()
	SetGlobal(custom)

	if Global() != custom {
		t.Error("Global() should return the custom logger after SetGlobal")
	}
	Info("global message")
}
