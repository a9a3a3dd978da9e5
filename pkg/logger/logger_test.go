package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestLogger(t *testing.T) (*Logger, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	var console bytes.Buffer
	l := NewLoggerWithOptions(Options{Dir: dir, Console: &console})
	t.Cleanup(l.Close)
	return l, &console, dir
}

func TestNewLogger(t *testing.T) {
	l, _, _ := newTestLogger(t)

	// Test that logger methods don't panic
	l.Info("Test info message", "TEST")
	l.Warn("Test warning message", "TEST")
	l.Debug("Test debug message", "TEST")
	l.System("Test system message", "TEST")
	l.Success("Test success message", "TEST")
	l.Critical("Test critical message", "TEST")
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelSuccess, "SUCCESS"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{LevelSystem, "SYSTEM"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelDiscordColor(t *testing.T) {
	tests := []struct {
		level LogLevel
		color int
	}{
		{LevelCritical, 0xFF0000},
		{LevelError, 0xFF0000},
		{LevelWarn, 0xFFFF00},
		{LevelSuccess, 0x00FF00},
		{LevelInfo, 0x0000FF},
		{LevelDebug, 0x800080},
		{LevelSystem, 0x808080},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.DiscordColor(); got != tt.color {
				t.Errorf("LogLevel.DiscordColor() = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestConsoleFormat(t *testing.T) {
	l, console, _ := newTestLogger(t)

	l.Success("guardado", "Store")

	line := console.String()
	if !strings.Contains(line, "SUCCESS") {
		t.Errorf("console line %q should carry the SUCCESS level", line)
	}
	if !strings.Contains(line, "[Store]: guardado") {
		t.Errorf("console line %q should carry prefix and message", line)
	}
}

func TestLogFiles(t *testing.T) {
	l, _, dir := newTestLogger(t)

	l.Info("solo combinado", "TEST")
	l.Error("también en error", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(dir, "combined.log"))
	if err != nil {
		t.Fatalf("reading combined.log: %v", err)
	}
	errorsLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	if err != nil {
		t.Fatalf("reading error.log: %v", err)
	}

	if !strings.Contains(string(combined), "solo combinado") || !strings.Contains(string(combined), "también en error") {
		t.Errorf("combined.log = %q, want both messages", combined)
	}
	if strings.Contains(string(errorsLog), "solo combinado") {
		t.Error("error.log should not contain info messages")
	}
	if !strings.Contains(string(errorsLog), "[ERROR] [TEST]: también en error") {
		t.Errorf("error.log = %q, want the error line without colors", errorsLog)
	}
}

func TestGlobalLoggerInit(t *testing.T) {
	// Reset the global logger for this test
	logger = nil
	once = sync.Once{}

	l := InitWithOptions(Options{Dir: t.TempDir(), Console: &bytes.Buffer{}})
	if l == nil {
		t.Fatal("Expected Init to return a logger")
	}
	defer l.Close()

	// Calling Init again should return the same logger
	l2 := Init("different", "different")
	if l != l2 {
		t.Error("Expected Init to return the same logger on subsequent calls")
	}

	// Get should return the same logger
	if l3 := Get(); l != l3 {
		t.Error("Expected Get to return the same logger")
	}
}
