package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestDataDirectory creates a cache data directory with the
// dictionary and thesaurus subdirectories
func CreateTestDataDirectory(t *testing.T) string {
	t.Helper()

	dataDir := filepath.Join(t.TempDir(), "data")
	for _, dir := range []string{"dictionary", "thesaurus"} {
		path := filepath.Join(dataDir, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			t.Fatalf("Failed to create test directory %s: %v", path, err)
		}
	}

	return dataDir
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateSourceFiles writes markup fragments into numbered files and
// returns their paths in order
func CreateSourceFiles(t *testing.T, fragments ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(fragments))
	for i, fragment := range fragments {
		path := filepath.Join(dir, "fragment"+string(rune('a'+i))+".txt")
		CreateTestFile(t, path, []byte(fragment))
		paths = append(paths, path)
	}
	return paths
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// CountFiles returns the number of regular files directly inside dir
func CountFiles(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read directory %s: %v", dir, err)
	}

	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n
}
