package flat

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadFile parses a staged flat table back into rows
func ReadFile(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flat table: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var rows []Row
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != len(Header) {
			return nil, fmt.Errorf("flat table line %d: got %d fields, want %d", line, len(fields), len(Header))
		}
		if line == 1 {
			if fields[0] != ColumnPosition {
				return nil, fmt.Errorf("flat table line 1: unexpected header %v", fields)
			}
			continue
		}

		position, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("flat table line %d: bad position: %w", line, err)
		}
		var tokens []string
		if fields[5] != "" {
			tokens = strings.Split(fields[5], " ")
		}
		rows = append(rows, Row{
			Position:  position,
			Reference: fields[1],
			Doculect:  fields[2],
			Concept:   fields[3],
			Phonetic:  fields[4],
			Tokens:    tokens,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flat table: %w", err)
	}
	return rows, nil
}
