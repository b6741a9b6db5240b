package phonetic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// classifyScript reads a JSON request from stdin and prints the classes
const classifyScript = `import json, sys
from lingpy import tokens2class
req = json.load(sys.stdin)
json.dump([tokens2class([t], req["model"])[0] for t in req["tokens"]], sys.stdout)
`

// LingPyConfig holds configuration for the LingPy classifier
type LingPyConfig struct {
	Python string // Interpreter with lingpy installed (default: python3)
	Model  string // Sound-class model (default: dolgo)
}

// DefaultLingPyConfig returns the Dolgopolsky model on python3
func DefaultLingPyConfig() *LingPyConfig {
	return &LingPyConfig{
		Python: "python3",
		Model:  "dolgo",
	}
}

// LingPyClassifier classifies tokens with lingpy.tokens2class
type LingPyClassifier struct {
	config  *LingPyConfig
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewLingPyClassifier creates a classifier; nil config means defaults
func NewLingPyClassifier(config *LingPyConfig) *LingPyClassifier {
	if config == nil {
		config = DefaultLingPyConfig()
	}
	return &LingPyClassifier{
		config:  config,
		command: exec.CommandContext,
	}
}

// IsAvailable checks that the interpreter can import lingpy
func (c *LingPyClassifier) IsAvailable(ctx context.Context) error {
	cmd := c.command(ctx, c.config.Python, "-c", "import lingpy")
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("lingpy is not importable with %s: %w\nOutput: %s", c.config.Python, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Classify implements Classifier with one interpreter run for all tokens
func (c *LingPyClassifier) Classify(ctx context.Context, tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return []string{}, nil
	}

	request, err := json.Marshal(map[string]any{
		"model":  c.config.Model,
		"tokens": tokens,
	})
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := c.command(ctx, c.config.Python, "-c", classifyScript)
	cmd.Stdin = bytes.NewReader(request)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("lingpy classifier failed: %w\nOutput: %s", err, strings.TrimSpace(stderr.String()))
	}

	var classes []string
	if err := json.Unmarshal(stdout.Bytes(), &classes); err != nil {
		return nil, fmt.Errorf("failed to decode classifier output: %w", err)
	}
	if len(classes) != len(tokens) {
		return nil, fmt.Errorf("classifier returned %d classes for %d tokens", len(classes), len(tokens))
	}
	return classes, nil
}
