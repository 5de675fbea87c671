package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestAllCategoriesLog tests that all categories create log files when debug mode is on
func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()

	if err := Initialize(tempDir, Settings{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	for _, cat := range AllCategories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}

	Loader("Convenience loader log")
	Store("Convenience store log")
	UI("Convenience ui log")
	Watch("Convenience watch log")
	Server("Convenience server log")

	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	for _, cat := range AllCategories {
		found := false
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), "_"+string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("Failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("Log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("No log file found for category: %s", cat)
		}
	}
}

// TestDebugModeDisabled tests that no logs are created when debug mode is off
func TestDebugModeDisabled(t *testing.T) {
	tempDir := t.TempDir()

	if err := Initialize(tempDir, Settings{DebugMode: false}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	Get(CategoryStore).Error("should not be written")
	Boot("should not be written either")

	if _, err := os.Stat(filepath.Join(tempDir, "logs")); !os.IsNotExist(err) {
		t.Errorf("Expected no logs directory in production mode, got err=%v", err)
	}
}

func TestCategoryFilter(t *testing.T) {
	tempDir := t.TempDir()

	err := Initialize(tempDir, Settings{
		DebugMode:  true,
		Categories: map[string]bool{"ui": false},
	})
	if err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	if IsCategoryEnabled(CategoryUI) {
		t.Error("ui category should be disabled")
	}
	if !IsCategoryEnabled(CategoryStore) {
		t.Error("store category should default to enabled")
	}
}

func TestLevelFiltering(t *testing.T) {
	tempDir := t.TempDir()

	if err := Initialize(tempDir, Settings{DebugMode: true, Level: "warn"}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	Get(CategoryTable).Info("hidden info line")
	Get(CategoryTable).Warn("visible warn line")
	CloseAll()

	matches, _ := filepath.Glob(filepath.Join(tempDir, "logs", "*_table.log"))
	if len(matches) != 1 {
		t.Fatalf("expected one table log, got %v", matches)
	}
	content, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(content), "hidden info line") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(string(content), "visible warn line") {
		t.Error("warn line should be written")
	}
}

func TestInitializeRequiresHome(t *testing.T) {
	if err := Initialize("", Settings{}); err == nil {
		t.Error("expected error for empty home")
	}
}
