package pipeline

import (
	"codeberg.org/snonux/lexstatcldf/internal/engine"
	"codeberg.org/snonux/lexstatcldf/internal/flat"
)

// Config holds everything a run needs. Nothing is read from globals.
type Config struct {
	Method        engine.Method
	ClusterMethod engine.ClusterMethod
	// Threshold nil leaves the cut-off to the engine
	Threshold *float64
	Overwrite bool
	// BadTokensLog is where the bad token report goes; empty skips the scan
	BadTokensLog string

	Scorer     engine.ScorerParams
	AlignModel string
	Ref        string
	Flat       flat.Options
	StagingDir string

	// EngineOutput, if set, is the prefix of the engine's own TSV dump
	EngineOutput string
	// SQLitePath, if set, receives a SQLite copy of forms and cognates
	SQLitePath string
}

// DefaultConfig returns the configuration used when no flags are given
func DefaultConfig() Config {
	return Config{
		Method:        engine.MethodSCA,
		ClusterMethod: engine.ClusterUPGMA,
		Scorer:        engine.DefaultScorer(),
		AlignModel:    "sca",
		Ref:           "cogid",
		Flat:          flat.DefaultOptions(),
	}
}
