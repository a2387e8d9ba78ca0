// Package archive moves a finished cache directory out of the way so the
// next run starts with an empty cache.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchiveCache moves dataDir to <parent>/archive/<name>-<timestamp> and
// returns the new location.
func ArchiveCache(dataDir string) (string, error) {
	info, err := os.Stat(dataDir)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("cache directory does not exist: %s", dataDir)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat cache directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("cache path is not a directory: %s", dataDir)
	}

	dataDir = filepath.Clean(dataDir)
	archiveDir := filepath.Join(filepath.Dir(dataDir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(dataDir)
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", base, time.Now().Format("20060102-150405")))

	// Two archives within the same second
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", base, time.Now().Format("20060102-150405.000000")))
	}

	if err := os.Rename(dataDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive cache directory: %w", err)
	}

	return archivePath, nil
}
