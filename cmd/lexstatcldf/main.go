package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/lexstatcldf/internal"
	"codeberg.org/snonux/lexstatcldf/internal/batch"
	"codeberg.org/snonux/lexstatcldf/internal/cldf"
	"codeberg.org/snonux/lexstatcldf/internal/cli"
	"codeberg.org/snonux/lexstatcldf/internal/engine"
	"codeberg.org/snonux/lexstatcldf/internal/logging"
	"codeberg.org/snonux/lexstatcldf/internal/phonetic"
	"codeberg.org/snonux/lexstatcldf/internal/pipeline"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitExists  = 2
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

func exitCode(err error) int {
	if errors.Is(err, pipeline.ErrCognateTableExists) {
		return exitExists
	}
	return exitFailure
}

// app bundles what every dataset run needs
type app struct {
	flags  *cli.Flags
	cfg    pipeline.Config
	orch   *pipeline.Orchestrator
	logger *slog.Logger
	batch  bool
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	flags.ApplyConfig(cmd.Flags().Changed)

	logger, err := logging.New(logging.Options{Level: flags.LogLevel, Format: flags.LogFormat})
	if err != nil {
		return err
	}
	logger = logger.With("run_id", internal.NewRunID())

	cfg, err := flags.PipelineConfig()
	if err != nil {
		return err
	}
	kind, err := flags.EngineKind()
	if err != nil {
		return err
	}

	newEngine := func() engine.Engine {
		return engine.NewLingPy(&engine.LingPyConfig{Python: flags.Python, Input: kind})
	}
	classifierConfig := phonetic.DefaultLingPyConfig()
	classifierConfig.Python = flags.Python
	var classifier phonetic.Classifier
	if cfg.BadTokensLog != "" {
		lingpy := phonetic.NewLingPyClassifier(classifierConfig)
		if err := lingpy.IsAvailable(cmd.Context()); err != nil {
			logger.Warn("bad token report disabled", "error", err)
		} else {
			classifier = lingpy
		}
	}

	a := &app{
		flags:  flags,
		cfg:    cfg,
		orch:   pipeline.New(newEngine, classifier, logger),
		logger: logger,
		batch:  flags.BatchFile != "",
	}

	if a.batch {
		if len(args) > 0 {
			return fmt.Errorf("--batch and a dataset argument are mutually exclusive")
		}
		return a.runBatch(cmd.Context())
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	return a.runDataset(cmd.Context(), path)
}

func (a *app) runBatch(ctx context.Context) error {
	paths, err := batch.ReadDatasetList(a.flags.BatchFile)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no datasets listed in %s", a.flags.BatchFile)
	}

	// Only engine failures count against the breaker; a bad dataset says
	// nothing about the next one.
	runner := batch.NewRunner(batch.Config{
		IsSuccessful: func(err error) bool {
			var stageErr *pipeline.StageError
			return !errors.As(err, &stageErr)
		},
	}, a.logger)

	summary := runner.Run(ctx, paths, a.runDataset)
	fmt.Println(renderBatchSummary(summary))

	return batchError(summary)
}

// batchError reports an unfinished batch. It wraps the first failure that
// is not an existing CognateTable, so exit code 2 only results when every
// failure was one.
func batchError(summary batch.Summary) error {
	failed := len(summary.Results) - summary.Succeeded()
	if failed == 0 {
		return nil
	}

	cause := summary.Err()
	for _, r := range summary.Results {
		if r.Err != nil && !errors.Is(r.Err, pipeline.ErrCognateTableExists) {
			cause = r.Err
			break
		}
	}
	return fmt.Errorf("%d of %d datasets did not complete: %w", failed, len(summary.Results), cause)
}

func (a *app) runDataset(ctx context.Context, path string) error {
	ds, err := cldf.Resolve(path)
	if err != nil {
		return err
	}

	unlock, err := ds.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			a.logger.Warn("failed to release dataset lock", "dataset", ds.Path(), "error", err)
		}
	}()

	cfg := a.cfg
	if a.batch {
		suffix := internal.SanitizeFilename(filepath.Base(ds.Dir()))
		cfg.BadTokensLog = withSuffix(cfg.BadTokensLog, suffix)
		cfg.EngineOutput = withSuffix(cfg.EngineOutput, suffix)
		cfg.SQLitePath = withSuffix(cfg.SQLitePath, suffix)
	}

	outcome, err := a.orch.Run(ctx, ds, cfg)
	if err != nil {
		return err
	}

	if !a.batch {
		fmt.Println(renderRunSummary(ds, cfg, outcome))
	}
	return nil
}

// withSuffix keeps per-dataset outputs of a batch apart: bad.json becomes
// bad-<suffix>.json
func withSuffix(path, suffix string) string {
	if path == "" || suffix == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + suffix + ext
}
