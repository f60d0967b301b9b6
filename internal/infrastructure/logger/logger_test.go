package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{" WARN ", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseLevel(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLevel(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestHelpersWriteToGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Log
	Set(zap.New(core))
	t.Cleanup(func() { Log = prev })

	Info("info", zap.String("k", "v"))
	Warn("warn")
	Error("error")
	Debug("debug")

	if logs.Len() != 4 {
		t.Fatalf("got %d entries, want 4", logs.Len())
	}
	if logs.All()[0].ContextMap()["k"] != "v" {
		t.Errorf("fields not propagated: %v", logs.All()[0].ContextMap())
	}
}

func TestHelpersNoopWithoutLogger(t *testing.T) {
	prev := Log
	Log = nil
	t.Cleanup(func() { Log = prev })

	Info("ignored")
	Warn("ignored")
	Error("ignored")
	Debug("ignored")
}
