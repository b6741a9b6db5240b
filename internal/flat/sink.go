package flat

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind identifies how a flat table is handed to the engine
type Kind string

const (
	// KindFile stages the table in a temp file
	KindFile Kind = "file"
	// KindMemory keeps the rows resident
	KindMemory Kind = "memory"
)

// ParseKind validates a configured sink kind
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindFile, KindMemory:
		return k, nil
	default:
		return "", fmt.Errorf("unknown engine input %q (want file or memory)", s)
	}
}

// Source is a finished flat table as seen by the engine
type Source struct {
	Kind Kind
	// Path is set for KindFile
	Path string
	// Rows is set for KindMemory
	Rows []Row
}

// Sink receives the header and rows of one flat table. Release must be
// called on every exit path; it is safe to call more than once.
type Sink interface {
	Kind() Kind
	WriteHeader(header []string) error
	WriteRow(row Row) error
	Finish() (Source, error)
	Release() error
}

// ErrReleased is returned when a sink is used after Release
var ErrReleased = errors.New("flat sink already released")

// NewSink returns the sink for kind. stagingDir is only used by file sinks;
// empty means the OS temp dir.
func NewSink(kind Kind, stagingDir string) (Sink, error) {
	switch kind {
	case KindFile:
		return NewFileSink(stagingDir)
	case KindMemory:
		return NewMemorySink(), nil
	default:
		return nil, fmt.Errorf("unknown engine input %q", kind)
	}
}

// FileSink stages the flat table in an exclusive temp file
type FileSink struct {
	file     *os.File
	writer   *bufio.Writer
	path     string
	finished bool
	released bool
}

// NewFileSink creates the staging file
func NewFileSink(stagingDir string) (*FileSink, error) {
	if stagingDir != "" {
		if err := os.MkdirAll(stagingDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
	}
	file, err := os.CreateTemp(stagingDir, "lexstatcldf-*.tsv")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	return &FileSink{
		file:   file,
		writer: bufio.NewWriter(file),
		path:   file.Name(),
	}, nil
}

// Kind implements Sink
func (s *FileSink) Kind() Kind { return KindFile }

// Path returns the staging file path
func (s *FileSink) Path() string { return s.path }

// WriteHeader implements Sink
func (s *FileSink) WriteHeader(header []string) error {
	return s.writeLine(header)
}

// WriteRow implements Sink
func (s *FileSink) WriteRow(row Row) error {
	return s.writeLine(row.Fields())
}

func (s *FileSink) writeLine(fields []string) error {
	if s.released {
		return ErrReleased
	}
	if s.finished {
		return errors.New("flat sink already finished")
	}
	if _, err := s.writer.WriteString(strings.Join(fields, "\t")); err != nil {
		return err
	}
	return s.writer.WriteByte('\n')
}

// Finish flushes and closes the staging file
func (s *FileSink) Finish() (Source, error) {
	if s.released {
		return Source{}, ErrReleased
	}
	if !s.finished {
		if err := s.writer.Flush(); err != nil {
			return Source{}, fmt.Errorf("failed to flush staging file: %w", err)
		}
		if err := s.file.Close(); err != nil {
			return Source{}, fmt.Errorf("failed to close staging file: %w", err)
		}
		s.finished = true
	}
	return Source{Kind: KindFile, Path: s.path}, nil
}

// Release closes and deletes the staging file
func (s *FileSink) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	if !s.finished {
		s.file.Close()
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove staging file: %w", err)
	}
	return nil
}

// MemorySink keeps rows resident for engines that take them in-process
type MemorySink struct {
	header   []string
	rows     []Row
	released bool
}

// NewMemorySink returns an empty memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Kind implements Sink
func (s *MemorySink) Kind() Kind { return KindMemory }

// Header returns the header written to the sink
func (s *MemorySink) Header() []string { return s.header }

// Rows returns the rows written so far
func (s *MemorySink) Rows() []Row { return s.rows }

// WriteHeader implements Sink
func (s *MemorySink) WriteHeader(header []string) error {
	if s.released {
		return ErrReleased
	}
	s.header = append([]string(nil), header...)
	return nil
}

// WriteRow implements Sink
func (s *MemorySink) WriteRow(row Row) error {
	if s.released {
		return ErrReleased
	}
	s.rows = append(s.rows, row)
	return nil
}

// Finish implements Sink
func (s *MemorySink) Finish() (Source, error) {
	if s.released {
		return Source{}, ErrReleased
	}
	return Source{Kind: KindMemory, Rows: s.rows}, nil
}

// Release drops the rows
func (s *MemorySink) Release() error {
	s.released = true
	s.rows = nil
	s.header = nil
	return nil
}
