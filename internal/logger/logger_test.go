package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInit(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "workflow.log")

	err := Init(Config{Level: "debug", File: logFile, Prefix: "test"})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if Logger.GetLevel() != log.DebugLevel {
		t.Errorf("Expected debug level, got %v", Logger.GetLevel())
	}

	Debug("Test debug message")
	Info("Test info message", "key", "value")
	Warn("Test warning message")
	Error("Test error message")

	if _, err := os.Stat(filepath.Dir(logFile)); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", filepath.Dir(logFile))
	}
}

func TestInitDefaultsToInfo(t *testing.T) {
	if err := Init(Config{JSON: true}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if Logger.GetLevel() != log.InfoLevel {
		t.Errorf("Expected info level, got %v", Logger.GetLevel())
	}
	if StandardLog() == nil {
		t.Error("StandardLog returned nil")
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init(Config{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}
