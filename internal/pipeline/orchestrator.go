package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/snonux/lexstatcldf/internal/badtokens"
	"codeberg.org/snonux/lexstatcldf/internal/cldf"
	"codeberg.org/snonux/lexstatcldf/internal/cognate"
	"codeberg.org/snonux/lexstatcldf/internal/engine"
	"codeberg.org/snonux/lexstatcldf/internal/export"
	"codeberg.org/snonux/lexstatcldf/internal/flat"
	"codeberg.org/snonux/lexstatcldf/internal/phonetic"
)

// ErrNoForms is returned when no form of the dataset has segments
var ErrNoForms = errors.New("no forms with segments")

// Outcome describes a finished or aborted run
type Outcome struct {
	States    []State
	Table     *flat.Table
	Results   []engine.Result
	Cognates  []cognate.Row
	Written   *cognate.Written
	BadTokens badtokens.Report
}

// State returns the last state reached
func (o *Outcome) State() State {
	if len(o.States) == 0 {
		return StateIdle
	}
	return o.States[len(o.States)-1]
}

// Orchestrator drives the engine over one dataset at a time
type Orchestrator struct {
	newEngine  func() engine.Engine
	classifier phonetic.Classifier
	logger     *slog.Logger
}

// New creates an orchestrator. newEngine is called once per run; classifier
// may be nil when bad token reports are never requested.
func New(newEngine func() engine.Engine, classifier phonetic.Classifier, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		newEngine:  newEngine,
		classifier: classifier,
		logger:     logger,
	}
}

type run struct {
	*Orchestrator
	cfg     Config
	outcome *Outcome
	logger  *slog.Logger
}

func (r *run) enter(state State, args ...any) {
	r.outcome.States = append(r.outcome.States, state)
	r.logger.Info(state.String(), append([]any{"stage", state.String()}, args...)...)
}

func (r *run) stageError(stage string, rows int, err error) error {
	return &StageError{
		Stage:         stage,
		Method:        r.cfg.Method,
		ClusterMethod: r.cfg.ClusterMethod,
		Threshold:     r.cfg.Threshold,
		Rows:          rows,
		Err:           err,
	}
}

// Run processes ds. The returned Outcome is non-nil even on error and lists
// the states reached.
func (o *Orchestrator) Run(ctx context.Context, ds *cldf.Dataset, cfg Config) (*Outcome, error) {
	r := &run{
		Orchestrator: o,
		cfg:          cfg,
		outcome:      &Outcome{States: []State{StateIdle}},
		logger:       o.logger.With("dataset", ds.Path()),
	}

	r.enter(StatePreflightCheck, "overwrite", cfg.Overwrite)
	if ds.HasComponent(cldf.CognateTable) && !cfg.Overwrite {
		r.enter(StateAborted)
		return r.outcome, fmt.Errorf("%s: %w (use --overwrite to replace it)", ds.Path(), ErrCognateTableExists)
	}

	forms, err := ds.Forms()
	if err != nil {
		return r.outcome, err
	}

	eng := o.newEngine()
	defer func() {
		if err := eng.Close(); err != nil {
			r.logger.Warn("engine did not shut down cleanly", "error", err)
		}
	}()

	sink, err := flat.NewSink(eng.Input(), cfg.StagingDir)
	if err != nil {
		return r.outcome, err
	}
	defer func() {
		if err := sink.Release(); err != nil {
			r.logger.Warn("failed to release staged table", "error", err)
		}
	}()

	table, err := flat.NewBridge(cfg.Flat).Build(forms, sink)
	if err != nil {
		return r.outcome, err
	}
	r.outcome.Table = table
	r.logger.Info("flat table staged", "sink", string(sink.Kind()), "rows", table.Emitted(), "skipped", table.SkippedCount())
	if table.SkippedCount() > 0 {
		r.logger.Debug("forms without segments", "ids", table.Skipped)
	}
	if table.Emitted() == 0 {
		return r.outcome, fmt.Errorf("%s: %w", ds.Path(), ErrNoForms)
	}

	source, err := sink.Finish()
	if err != nil {
		return r.outcome, err
	}

	if cfg.BadTokensLog != "" {
		r.outcome.BadTokens = r.scanBadTokens(ctx, table.Rows)
	}

	rows := table.Emitted()
	if err := eng.Load(ctx, source); err != nil {
		return r.outcome, r.stageError("load", rows, err)
	}

	if cfg.Method != engine.MethodSCA {
		if err := eng.TrainScorer(ctx, cfg.Scorer); err != nil {
			return r.outcome, r.stageError("scorer", rows, err)
		}
		r.enter(StateScorerTrained, "runs", cfg.Scorer.Runs)
	}

	err = eng.Cluster(ctx, engine.ClusterParams{
		Method:        cfg.Method,
		ClusterMethod: cfg.ClusterMethod,
		Threshold:     cfg.Threshold,
		Ref:           cfg.Ref,
	})
	if err != nil {
		return r.outcome, r.stageError("cluster", rows, err)
	}
	r.enter(StateClustered, "method", string(cfg.Method), "cluster_method", string(cfg.ClusterMethod))

	err = eng.Align(ctx, engine.AlignParams{
		Model:        cfg.AlignModel,
		Ref:          cfg.Ref,
		OutputPrefix: cfg.EngineOutput,
	})
	if err != nil {
		return r.outcome, r.stageError("align", rows, err)
	}

	results, err := eng.Results(ctx)
	if err != nil {
		return r.outcome, r.stageError("results", rows, err)
	}
	r.outcome.Results = results
	r.enter(StateAligned, "results", len(results))

	cognates := cognate.Build(results)
	written, err := cognate.Write(ds, cognates, cfg.Overwrite)
	if err != nil {
		return r.outcome, fmt.Errorf("failed to write CognateTable: %w", err)
	}
	r.outcome.Cognates = cognates
	r.outcome.Written = written
	if written.Archived != "" {
		r.logger.Info("previous CognateTable archived", "path", written.Archived)
	}

	if cfg.SQLitePath != "" {
		if err := export.WriteSQLite(cfg.SQLitePath, forms, cognates); err != nil {
			return r.outcome, fmt.Errorf("sqlite export: %w", err)
		}
		r.logger.Info("sqlite export written", "path", cfg.SQLitePath)
	}

	r.enter(StateDone, "path", written.Path, "cognates", len(cognates))
	return r.outcome, nil
}

// scanBadTokens is diagnostic only; failures are logged and the run goes on
func (r *run) scanBadTokens(ctx context.Context, rows []flat.Row) badtokens.Report {
	if r.classifier == nil {
		r.logger.Warn("bad token scan skipped, no classifier configured")
		return nil
	}

	report, err := badtokens.Scan(ctx, rows, r.classifier)
	if err != nil {
		r.logger.Warn("bad token scan failed", "error", err)
		return nil
	}
	if err := report.WriteFile(r.cfg.BadTokensLog); err != nil {
		r.logger.Warn("failed to write bad token report", "path", r.cfg.BadTokensLog, "error", err)
		return report
	}

	r.logger.Info("bad token report written", "path", r.cfg.BadTokensLog, "tokens", len(report), "occurrences", report.Occurrences())
	return report
}
