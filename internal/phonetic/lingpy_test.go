package phonetic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"testing"
)

// fakeCommand runs this test binary as a stand-in for the interpreter
func fakeCommand(mode string) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HELPER_MODE="+mode)
		return cmd
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	switch os.Getenv("HELPER_MODE") {
	case "fail":
		fmt.Fprint(os.Stderr, "ModuleNotFoundError: No module named 'lingpy'")
		os.Exit(1)
	case "short":
		fmt.Print(`["V"]`)
		return
	}

	var req struct {
		Model  string   `json:"model"`
		Tokens []string `json:"tokens"`
	}
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		// availability check: nothing on stdin
		return
	}
	classes := make([]string, len(req.Tokens))
	for i, token := range req.Tokens {
		switch {
		case strings.HasPrefix(token, "!"):
			classes[i] = UnknownClass
		case strings.ContainsAny(token, "aeiou"):
			classes[i] = "V"
		default:
			classes[i] = strings.ToUpper(token)
		}
	}
	json.NewEncoder(os.Stdout).Encode(classes)
}

func TestLingPyClassify(t *testing.T) {
	c := NewLingPyClassifier(nil)
	c.command = fakeCommand("ok")

	got, err := c.Classify(context.Background(), []string{"k", "a", "!x", "t"})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	expected := []string{"K", "V", UnknownClass, "T"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Classify() = %v, want %v", got, expected)
	}
}

func TestLingPyClassifyEmpty(t *testing.T) {
	c := NewLingPyClassifier(nil)
	c.command = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		t.Fatal("interpreter must not start for an empty token list")
		return nil
	}

	got, err := c.Classify(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Classify(nil) = %v, %v", got, err)
	}
}

func TestLingPyClassifyErrors(t *testing.T) {
	tests := []struct {
		mode    string
		message string
	}{
		{"fail", "No module named 'lingpy'"},
		{"short", "returned 1 classes for 2 tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			c := NewLingPyClassifier(nil)
			c.command = fakeCommand(tt.mode)

			_, err := c.Classify(context.Background(), []string{"a", "b"})
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Error %q does not mention %q", err, tt.message)
			}
		})
	}
}

func TestLingPyIsAvailable(t *testing.T) {
	c := NewLingPyClassifier(nil)
	c.command = fakeCommand("ok")
	if err := c.IsAvailable(context.Background()); err != nil {
		t.Errorf("IsAvailable() error = %v", err)
	}

	c.command = fakeCommand("fail")
	if err := c.IsAvailable(context.Background()); err == nil {
		t.Error("Expected IsAvailable() to fail")
	}
}

func TestDefaultLingPyConfig(t *testing.T) {
	config := DefaultLingPyConfig()
	if config.Python != "python3" {
		t.Errorf("Expected python3, got %s", config.Python)
	}
	if config.Model != "dolgo" {
		t.Errorf("Expected dolgo, got %s", config.Model)
	}
}

func TestMapAndFunc(t *testing.T) {
	ctx := context.Background()

	m := Map{"a": "V", "t": "T"}
	got, _ := m.Classify(ctx, []string{"a", "ʘ", "t"})
	if !reflect.DeepEqual(got, []string{"V", UnknownClass, "T"}) {
		t.Errorf("Map.Classify() = %v", got)
	}

	f := Func(func(token string) string { return strings.ToUpper(token) })
	got, _ = f.Classify(ctx, []string{"p", "k"})
	if !reflect.DeepEqual(got, []string{"P", "K"}) {
		t.Errorf("Func.Classify() = %v", got)
	}
}
