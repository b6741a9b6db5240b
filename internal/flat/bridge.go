package flat

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"codeberg.org/snonux/lexstatcldf/internal/cldf"
	"codeberg.org/snonux/lexstatcldf/internal/sanitize"
)

// MalformedFormError reports a form whose segments cannot be represented
// in the flat table
type MalformedFormError struct {
	FormID string
	Reason string
}

func (e *MalformedFormError) Error() string {
	return fmt.Sprintf("form %q has malformed segments: %s", e.FormID, e.Reason)
}

// Options control text sanitization
type Options struct {
	TabReplacement     string
	NewlineReplacement string
}

// DefaultOptions replaces tabs and newlines with a space
func DefaultOptions() Options {
	return Options{
		TabReplacement:     sanitize.DefaultReplacement,
		NewlineReplacement: sanitize.DefaultReplacement,
	}
}

// Table is the outcome of one translation
type Table struct {
	Rows []Row
	// Skipped holds the IDs of forms without segments
	Skipped []string
}

// Emitted returns the number of rows written to the sink
func (t *Table) Emitted() int { return len(t.Rows) }

// SkippedCount returns the number of forms left out
func (t *Table) SkippedCount() int { return len(t.Skipped) }

// Bridge translates forms into flat rows
type Bridge struct {
	options Options
}

// NewBridge creates a bridge with the given sanitization options
func NewBridge(options Options) *Bridge {
	return &Bridge{options: options}
}

// Build writes the header and one row per form with segments to sink, in
// form order. Forms without segments are skipped and listed in the result;
// positions are only consumed by emitted rows.
func (b *Bridge) Build(forms []cldf.Form, sink Sink) (*Table, error) {
	if err := sink.WriteHeader(Header); err != nil {
		return nil, fmt.Errorf("failed to write flat header: %w", err)
	}

	table := &Table{}
	position := Origin
	for _, form := range forms {
		if len(form.Segments) == 0 {
			table.Skipped = append(table.Skipped, form.ID)
			continue
		}
		if err := validateSegments(form); err != nil {
			return nil, err
		}

		row := b.row(position, form)
		if err := sink.WriteRow(row); err != nil {
			return nil, fmt.Errorf("failed to write flat row for form %q: %w", form.ID, err)
		}
		table.Rows = append(table.Rows, row)
		position++
	}

	return table, nil
}

func (b *Bridge) row(position int, form cldf.Form) Row {
	tokens := sanitize.CleanTokens(form.Segments)
	for i, token := range tokens {
		tokens[i] = b.text(token)
	}
	return Row{
		Position:  position,
		Reference: b.text(form.ID),
		Doculect:  b.text(form.LanguageID),
		Concept:   b.text(form.ParameterID),
		Phonetic:  b.text(strings.Join(form.Segments, "")),
		Tokens:    tokens,
	}
}

func (b *Bridge) text(value string) string {
	return sanitize.Text(value, b.options.TabReplacement, b.options.NewlineReplacement)
}

// validateSegments rejects tokens that would corrupt the space-joined
// TOKENS column.
func validateSegments(form cldf.Form) error {
	for i, token := range form.Segments {
		switch {
		case token == "":
			return &MalformedFormError{FormID: form.ID, Reason: fmt.Sprintf("empty segment at position %d", i+1)}
		case !utf8.ValidString(token):
			return &MalformedFormError{FormID: form.ID, Reason: fmt.Sprintf("invalid UTF-8 in segment %d", i+1)}
		case strings.IndexFunc(token, unicode.IsSpace) >= 0:
			return &MalformedFormError{FormID: form.ID, Reason: fmt.Sprintf("whitespace inside segment %q", token)}
		}
	}
	return nil
}
