package cli

import (
	"fmt"

	"github.com/spf13/viper"

	"codeberg.org/snonux/lexstatcldf/internal/engine"
	"codeberg.org/snonux/lexstatcldf/internal/flat"
	"codeberg.org/snonux/lexstatcldf/internal/pipeline"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	BatchFile string
	LogLevel  string
	LogFormat string

	// Pipeline flags
	Method        string
	ClusterMethod string
	Threshold     float64
	Overwrite     bool
	BadTokensLog  string

	// Engine flags
	Python       string
	EngineInput  string
	StagingDir   string
	EngineOutput string

	// Output flags
	SQLitePath string

	// Flat table text replacements, config file only
	TabReplacement     string
	NewlineReplacement string

	// ThresholdSet is true when a threshold came from a flag or the config
	ThresholdSet bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	defaults := pipeline.DefaultConfig()
	return &Flags{
		LogLevel:           "info",
		LogFormat:          "auto",
		Method:             string(defaults.Method),
		ClusterMethod:      string(defaults.ClusterMethod),
		Python:             engine.DefaultLingPyConfig().Python,
		EngineInput:        string(flat.KindFile),
		TabReplacement:     defaults.Flat.TabReplacement,
		NewlineReplacement: defaults.Flat.NewlineReplacement,
	}
}

// ApplyConfig fills flags the user did not set on the command line from
// viper (config file or environment). changed reports whether a flag was
// given explicitly.
func (f *Flags) ApplyConfig(changed func(name string) bool) {
	strs := []struct {
		flag string
		key  string
		dst  *string
	}{
		{"method", "pipeline.method", &f.Method},
		{"cluster-method", "pipeline.cluster_method", &f.ClusterMethod},
		{"bad-tokens-log", "pipeline.bad_tokens_log", &f.BadTokensLog},
		{"python", "engine.python", &f.Python},
		{"engine-input", "engine.input", &f.EngineInput},
		{"staging-dir", "engine.staging_dir", &f.StagingDir},
		{"engine-output", "engine.output", &f.EngineOutput},
		{"sqlite", "output.sqlite", &f.SQLitePath},
		{"log-level", "log.level", &f.LogLevel},
		{"log-format", "log.format", &f.LogFormat},
	}
	for _, s := range strs {
		if !changed(s.flag) && viper.IsSet(s.key) {
			*s.dst = viper.GetString(s.key)
		}
	}

	if changed("threshold") {
		f.ThresholdSet = true
	} else if viper.IsSet("pipeline.threshold") {
		f.Threshold = viper.GetFloat64("pipeline.threshold")
		f.ThresholdSet = true
	}
	if !changed("overwrite") && viper.IsSet("pipeline.overwrite") {
		f.Overwrite = viper.GetBool("pipeline.overwrite")
	}

	// Replacements may legitimately be empty strings
	if viper.IsSet("flat.tab_replacement") {
		f.TabReplacement = viper.GetString("flat.tab_replacement")
	}
	if viper.IsSet("flat.newline_replacement") {
		f.NewlineReplacement = viper.GetString("flat.newline_replacement")
	}
}

// PipelineConfig validates the flags and turns them into a pipeline config
func (f *Flags) PipelineConfig() (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()

	method, err := engine.ParseMethod(f.Method)
	if err != nil {
		return cfg, err
	}
	clusterMethod, err := engine.ParseClusterMethod(f.ClusterMethod)
	if err != nil {
		return cfg, err
	}
	if f.ThresholdSet && f.Threshold < 0 {
		return cfg, fmt.Errorf("threshold must not be negative, got %g", f.Threshold)
	}

	cfg.Method = method
	cfg.ClusterMethod = clusterMethod
	if f.ThresholdSet {
		threshold := f.Threshold
		cfg.Threshold = &threshold
	}
	cfg.Overwrite = f.Overwrite
	cfg.BadTokensLog = f.BadTokensLog
	cfg.StagingDir = f.StagingDir
	cfg.EngineOutput = f.EngineOutput
	cfg.SQLitePath = f.SQLitePath
	cfg.Flat = flat.Options{
		TabReplacement:     f.TabReplacement,
		NewlineReplacement: f.NewlineReplacement,
	}
	return cfg, nil
}

// EngineKind validates the engine input flag
func (f *Flags) EngineKind() (flat.Kind, error) {
	return flat.ParseKind(f.EngineInput)
}
