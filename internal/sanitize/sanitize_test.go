package sanitize

import (
	"reflect"
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		tab      string
		newline  string
		expected string
	}{
		{
			name:     "no delimiters",
			value:    "kʰapu",
			tab:      " ",
			newline:  " ",
			expected: "kʰapu",
		},
		{
			name:     "tab and newline",
			value:    "a\tb\nc",
			tab:      "_",
			newline:  "|",
			expected: "a_b|c",
		},
		{
			name:     "crlf counts once",
			value:    "line one\r\nline two",
			tab:      " ",
			newline:  " / ",
			expected: "line one / line two",
		},
		{
			name:     "lone carriage return",
			value:    "a\rb",
			tab:      " ",
			newline:  "+",
			expected: "a+b",
		},
		{
			name:     "empty replacements",
			value:    "\t\n",
			tab:      "",
			newline:  "",
			expected: "",
		},
		{
			name:     "empty value",
			value:    "",
			tab:      " ",
			newline:  " ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.value, tt.tab, tt.newline)
			if got != tt.expected {
				t.Errorf("Text(%q) = %q, want %q", tt.value, got, tt.expected)
			}
			if strings.ContainsAny(got, "\t\n") && !strings.ContainsAny(tt.tab+tt.newline, "\t\n") {
				t.Errorf("Text(%q) still contains a delimiter: %q", tt.value, got)
			}
		})
	}
}

func TestCleanTokens(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		expected []string
	}{
		{
			name:     "all forbidden markers",
			tokens:   []string{"(", ",", "_", ".", "-", ";", ")"},
			expected: []string{},
		},
		{
			name:     "mixed",
			tokens:   []string{"k", "a", "-", "p", "u", "_", "t"},
			expected: []string{"k", "a", "p", "u", "t"},
		},
		{
			name:     "markers inside tokens are kept",
			tokens:   []string{"a-", "(x", "t͡s", "+", "#"},
			expected: []string{"a-", "(x", "t͡s", "+", "#"},
		},
		{
			name:     "nil input",
			tokens:   nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanTokens(tt.tokens)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("CleanTokens(%v) = %v, want %v", tt.tokens, got, tt.expected)
			}
		})
	}
}

func TestCleanTokensDoesNotMutateInput(t *testing.T) {
	tokens := []string{"a", "-", "b"}
	CleanTokens(tokens)

	if !reflect.DeepEqual(tokens, []string{"a", "-", "b"}) {
		t.Errorf("input was modified: %v", tokens)
	}
}

func TestIsForbidden(t *testing.T) {
	for _, token := range []string{"(", ",", "_", ".", "-", ";", ")"} {
		if !IsForbidden(token) {
			t.Errorf("IsForbidden(%q) = false, want true", token)
		}
	}
	for _, token := range []string{"", " ", "+", "#", "a", "--", ":"} {
		if IsForbidden(token) {
			t.Errorf("IsForbidden(%q) = true, want false", token)
		}
	}
}
