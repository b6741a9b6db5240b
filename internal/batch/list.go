package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadDatasetList reads one dataset path per line. Blank lines and lines
// starting with '#' are ignored; relative paths are taken relative to the
// list file.
func ReadDatasetList(filename string) ([]string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	base := filepath.Dir(filename)
	var paths []string
	for _, line := range splitLines(string(content)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		paths = append(paths, line)
	}

	return paths, nil
}

// splitLines splits on \n and drops \r so CRLF lists work
func splitLines(s string) []string {
	var lines []string
	var current strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			lines = append(lines, current.String())
			current.Reset()
		case '\r':
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
