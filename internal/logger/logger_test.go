package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	config := Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
	}

	InitWithWriter(config, &buf)

	slog.Info("test message", "key", "value")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if logEntry["service"] != "test-service" {
		t.Errorf("Expected service=test-service, got %v", logEntry["service"])
	}
	if logEntry["environment"] != "test" {
		t.Errorf("Expected environment=test, got %v", logEntry["environment"])
	}
	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("Expected key=value, got %v", logEntry["key"])
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	config := Config{Level: "warn", Format: "text", ServiceName: "test"}
	InitWithWriter(config, &buf)

	slog.Debug("should not appear")
	slog.Info("should not appear either")
	slog.Warn("should appear")

	out := buf.String()
	if bytes.Contains(buf.Bytes(), []byte("should not appear")) {
		t.Errorf("Expected debug/info suppressed, got: %s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("should appear")) {
		t.Errorf("Expected warn message, got: %s", out)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	id := GenerateRequestID()
	if id == "" {
		t.Fatal("Expected non-empty request ID")
	}

	ctx := WithRequestID(context.Background(), id)
	got, ok := RequestIDFromContext(ctx)
	if !ok || got != id {
		t.Errorf("Expected request ID %q, got %q (ok=%v)", id, got, ok)
	}

	if _, ok := RequestIDFromContext(context.Background()); ok {
		t.Error("Expected no request ID on empty context")
	}
}

func TestLogLevelParsing(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		got := Config{Level: tt.level}.LogLevel()
		if got != tt.expected {
			t.Errorf("LogLevel(%q) = %v, want %v", tt.level, got, tt.expected)
		}
	}
}

func TestEnvironmentProfiles(t *testing.T) {
	prod := ProductionConfig()
	if !prod.IsJSON() {
		t.Error("production profile should log JSON")
	}
	if prod.LogLevel() != slog.LevelInfo {
		t.Errorf("production level = %v, want info", prod.LogLevel())
	}
	if prod.AddSource {
		t.Error("production profile should not include source locations")
	}

	dev := DevelopmentConfig()
	if dev.IsJSON() {
		t.Error("development profile should log text")
	}
	if dev.LogLevel() != slog.LevelDebug {
		t.Errorf("development level = %v, want debug", dev.LogLevel())
	}
	if !dev.AddSource {
		t.Error("development profile should include source locations")
	}
}
