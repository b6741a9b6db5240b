package engine

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"codeberg.org/snonux/lexstatcldf/internal/flat"
)

//go:embed driver.py
var driverScript string

// LingPyConfig holds configuration for the LingPy session
type LingPyConfig struct {
	Python string    // Interpreter with lingpy installed (default: python3)
	Input  flat.Kind // How the flat table is handed over (default: file)
}

// DefaultLingPyConfig returns python3 with file input
func DefaultLingPyConfig() *LingPyConfig {
	return &LingPyConfig{
		Python: "python3",
		Input:  flat.KindFile,
	}
}

// LingPy runs LexStat and Alignments in a Python child process. The process
// starts on Load and lives until Close.
type LingPy struct {
	config  *LingPyConfig
	command func(ctx context.Context, name string, args ...string) *exec.Cmd

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr *tailBuffer
	closed bool
}

var _ Engine = (*LingPy)(nil)

// NewLingPy creates a session; nil config means defaults
func NewLingPy(config *LingPyConfig) *LingPy {
	if config == nil {
		config = DefaultLingPyConfig()
	}
	if config.Input == "" {
		config.Input = flat.KindFile
	}
	return &LingPy{
		config:  config,
		command: exec.CommandContext,
	}
}

// Input implements Engine
func (e *LingPy) Input() flat.Kind {
	return e.config.Input
}

// Load starts the session and reads the flat table
func (e *LingPy) Load(ctx context.Context, source flat.Source) error {
	if err := e.start(ctx); err != nil {
		return err
	}

	req := map[string]any{"op": "load"}
	switch source.Kind {
	case flat.KindFile:
		req["path"] = source.Path
	case flat.KindMemory:
		rows := make([][]any, len(source.Rows))
		for i, row := range source.Rows {
			tokens := row.Tokens
			if tokens == nil {
				tokens = []string{}
			}
			rows[i] = []any{row.Position, row.Reference, row.Doculect, row.Concept, row.Phonetic, tokens}
		}
		req["header"] = flat.Header
		req["rows"] = rows
	default:
		return fmt.Errorf("unsupported flat source %q", source.Kind)
	}

	return e.call(req, nil)
}

// TrainScorer implements Engine
func (e *LingPy) TrainScorer(_ context.Context, params ScorerParams) error {
	return e.call(map[string]any{
		"op":            "scorer",
		"preprocessing": params.Preprocessing,
		"runs":          params.Runs,
		"ratio":         params.Ratio[:],
		"vscale":        params.VScale,
	}, nil)
}

// Cluster implements Engine
func (e *LingPy) Cluster(_ context.Context, params ClusterParams) error {
	req := map[string]any{
		"op":             "cluster",
		"method":         string(params.Method),
		"cluster_method": string(params.ClusterMethod),
		"ref":            params.Ref,
	}
	if params.Threshold != nil {
		req["threshold"] = *params.Threshold
	}
	return e.call(req, nil)
}

// Align implements Engine
func (e *LingPy) Align(_ context.Context, params AlignParams) error {
	req := map[string]any{
		"op":    "align",
		"model": params.Model,
		"ref":   params.Ref,
	}
	if params.OutputPrefix != "" {
		req["output"] = params.OutputPrefix
	}
	return e.call(req, nil)
}

type wireResult struct {
	ID        int               `json:"id"`
	Reference string            `json:"reference"`
	Cogid     string            `json:"cogid"`
	Alignment []string          `json:"alignment"`
	Fields    map[string]string `json:"fields"`
}

// Results implements Engine
func (e *LingPy) Results(_ context.Context) ([]Result, error) {
	var wire []wireResult
	if err := e.call(map[string]any{"op": "results"}, &wire); err != nil {
		return nil, err
	}

	results := make([]Result, len(wire))
	for i, w := range wire {
		results[i] = Result{
			Position:     w.ID,
			Reference:    w.Reference,
			CognatesetID: w.Cogid,
			Alignment:    w.Alignment,
			Fields:       w.Fields,
		}
	}
	return results, nil
}

// Close ends the session and waits for the interpreter to exit
func (e *LingPy) Close() error {
	if e.cmd == nil || e.closed {
		return nil
	}
	e.closed = true

	// best effort; the process may already be gone
	_ = e.send(map[string]any{"op": "close"})
	e.stdin.Close()

	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("lingpy session exited: %w%s", err, e.stderrTail())
	}
	return nil
}

func (e *LingPy) start(ctx context.Context) error {
	if e.cmd != nil {
		return errors.New("lingpy session already started")
	}

	cmd := e.command(ctx, e.config.Python, "-u", "-c", driverScript)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	e.stderr = &tailBuffer{limit: 4096}
	cmd.Stderr = e.stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", e.config.Python, err)
	}

	e.cmd = cmd
	e.stdin = stdin
	e.stdout = bufio.NewReaderSize(stdout, 64*1024)
	return nil
}

type response struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// call sends one request and decodes the data of its response into out
func (e *LingPy) call(req map[string]any, out any) error {
	op, _ := req["op"].(string)
	if e.cmd == nil || e.closed {
		return fmt.Errorf("lingpy %s: session not running", op)
	}

	if err := e.send(req); err != nil {
		e.abort()
		return fmt.Errorf("%w: lingpy %s: %v%s", ErrEngine, op, err, e.stderrTail())
	}

	line, err := e.stdout.ReadBytes('\n')
	if err != nil {
		e.abort()
		return fmt.Errorf("%w: lingpy %s: no response: %v%s", ErrEngine, op, err, e.stderrTail())
	}

	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return fmt.Errorf("lingpy %s: bad response %q: %w", op, strings.TrimSpace(string(line)), err)
	}
	if !resp.OK {
		return fmt.Errorf("%w: lingpy %s: %s", ErrEngine, op, resp.Error)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("lingpy %s: failed to decode data: %w", op, err)
		}
	}
	return nil
}

// abort reaps a session that stopped answering. Waiting also flushes the
// captured stderr, which is what the caller reports.
func (e *LingPy) abort() {
	e.closed = true
	e.stdin.Close()
	_ = e.cmd.Wait()
}

func (e *LingPy) send(req map[string]any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	_, err = e.stdin.Write(payload)
	return err
}

func (e *LingPy) stderrTail() string {
	if e.stderr == nil {
		return ""
	}
	if tail := strings.TrimSpace(e.stderr.String()); tail != "" {
		return "\nOutput: " + tail
	}
	return ""
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
