package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Dir is the name of the archive directory created next to archived tables
const Dir = "archive"

// ArchiveTable moves an existing table file into an archive directory next to
// it, stamped with the current time. It returns the new location.
func ArchiveTable(tablePath string) (string, error) {
	info, err := os.Stat(tablePath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("table file does not exist: %s", tablePath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat table file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("table path is a directory: %s", tablePath)
	}

	archiveDir := filepath.Join(filepath.Dir(tablePath), Dir)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(tablePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	now := time.Now()
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405"), ext))

	// Two archives within the same second get a finer stamp
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405.000000"), ext))
	}

	if err := os.Rename(tablePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive table file: %w", err)
	}

	return archivePath, nil
}
