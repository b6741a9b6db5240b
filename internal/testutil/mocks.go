package testutil

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/snonux/lexstatcldf/internal/engine"
	"codeberg.org/snonux/lexstatcldf/internal/flat"
	"codeberg.org/snonux/lexstatcldf/internal/phonetic"
)

// FakeEngine is an in-process engine that puts forms with identical tokens
// into the same cognate set and aligns every form with its own tokens.
type FakeEngine struct {
	Kind flat.Kind
	// Errors makes the named call ("load", "scorer", "cluster", "align",
	// "results") fail
	Errors map[string]error

	Calls     []string
	Source    flat.Source
	Rows      []flat.Row
	Scorer    *engine.ScorerParams
	Clustered *engine.ClusterParams
	Aligned   *engine.AlignParams
	Closed    bool

	cogids map[int]string
}

// NewFakeEngine returns a fake engine reading from the given sink kind
func NewFakeEngine(kind flat.Kind) *FakeEngine {
	return &FakeEngine{Kind: kind, Errors: map[string]error{}}
}

func (e *FakeEngine) call(name string) error {
	e.Calls = append(e.Calls, name)
	if err, ok := e.Errors[name]; ok {
		return fmt.Errorf("%w: %w", engine.ErrEngine, err)
	}
	return nil
}

// Input implements engine.Engine
func (e *FakeEngine) Input() flat.Kind {
	return e.Kind
}

// Load implements engine.Engine
func (e *FakeEngine) Load(_ context.Context, source flat.Source) error {
	if err := e.call("load"); err != nil {
		return err
	}
	e.Source = source

	switch source.Kind {
	case flat.KindFile:
		rows, err := flat.ReadFile(source.Path)
		if err != nil {
			return err
		}
		e.Rows = rows
	default:
		e.Rows = append([]flat.Row(nil), source.Rows...)
	}
	return nil
}

// TrainScorer implements engine.Engine
func (e *FakeEngine) TrainScorer(_ context.Context, params engine.ScorerParams) error {
	if err := e.call("scorer"); err != nil {
		return err
	}
	e.Scorer = &params
	return nil
}

// Cluster implements engine.Engine. Cognate set IDs are numbered by first
// appearance of each token string.
func (e *FakeEngine) Cluster(_ context.Context, params engine.ClusterParams) error {
	if err := e.call("cluster"); err != nil {
		return err
	}
	e.Clustered = &params

	sets := map[string]string{}
	e.cogids = map[int]string{}
	for _, row := range e.Rows {
		key := strings.Join(row.Tokens, " ")
		if _, ok := sets[key]; !ok {
			sets[key] = fmt.Sprint(len(sets) + 1)
		}
		e.cogids[row.Position] = sets[key]
	}
	return nil
}

// Align implements engine.Engine
func (e *FakeEngine) Align(_ context.Context, params engine.AlignParams) error {
	if err := e.call("align"); err != nil {
		return err
	}
	e.Aligned = &params
	return nil
}

// Results implements engine.Engine
func (e *FakeEngine) Results(_ context.Context) ([]engine.Result, error) {
	if err := e.call("results"); err != nil {
		return nil, err
	}

	results := make([]engine.Result, 0, len(e.Rows))
	for _, row := range e.Rows {
		results = append(results, engine.Result{
			Position:     row.Position,
			Reference:    row.Reference,
			CognatesetID: e.cogids[row.Position],
			Alignment:    append([]string(nil), row.Tokens...),
			Fields:       map[string]string{"tokens": strings.Join(row.Tokens, " ")},
		})
	}
	return results, nil
}

// Close implements engine.Engine
func (e *FakeEngine) Close() error {
	e.Closed = true
	return nil
}

// FakeClassifier maps tokens through a fixed table; unknown tokens get the
// unknown class. Err, if set, is returned from every call.
type FakeClassifier struct {
	Classes map[string]string
	Err     error
	Calls   int
}

// Classify implements phonetic.Classifier
func (c *FakeClassifier) Classify(ctx context.Context, tokens []string) ([]string, error) {
	c.Calls++
	if c.Err != nil {
		return nil, c.Err
	}
	return phonetic.Map(c.Classes).Classify(ctx, tokens)
}
