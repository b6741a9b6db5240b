// Package badtokens finds segments the sound-class model cannot classify.
// The report is diagnostic only; the clustering run never depends on it.
package badtokens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"codeberg.org/snonux/lexstatcldf/internal/flat"
	"codeberg.org/snonux/lexstatcldf/internal/phonetic"
)

// Report maps each unclassifiable token to the references of the forms it
// occurs in, once per occurrence
type Report map[string][]string

// Tokens returns the report's tokens in sorted order
func (r Report) Tokens() []string {
	tokens := make([]string, 0, len(r))
	for token := range r {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Occurrences returns the total number of recorded occurrences
func (r Report) Occurrences() int {
	n := 0
	for _, refs := range r {
		n += len(refs)
	}
	return n
}

// Scan classifies the cleaned tokens of every row and records each token of
// class phonetic.UnknownClass against the row's reference. The classifier
// is called once with the distinct tokens.
func Scan(ctx context.Context, rows []flat.Row, classifier phonetic.Classifier) (Report, error) {
	var distinct []string
	seen := make(map[string]struct{})
	for _, row := range rows {
		for _, token := range row.Tokens {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			distinct = append(distinct, token)
		}
	}

	report := Report{}
	if len(distinct) == 0 {
		return report, nil
	}

	classes, err := classifier.Classify(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("classify tokens: %w", err)
	}
	if len(classes) != len(distinct) {
		return nil, fmt.Errorf("classifier returned %d classes for %d tokens", len(classes), len(distinct))
	}

	unknown := make(map[string]bool)
	for i, token := range distinct {
		if classes[i] == phonetic.UnknownClass {
			unknown[token] = true
		}
	}

	for _, row := range rows {
		for _, token := range row.Tokens {
			if unknown[token] {
				report[token] = append(report[token], row.Reference)
			}
		}
	}
	return report, nil
}

// WriteJSON encodes the report as a JSON object
func (r Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(r)
}

// WriteFile writes the report to path
func (r Report) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create bad tokens log: %w", err)
	}
	if err := r.WriteJSON(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write bad tokens log: %w", err)
	}
	return file.Close()
}
