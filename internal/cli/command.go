package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/lexstatcldf/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lexstatcldf [dataset]",
		Short: "Automatic cognate detection for CLDF word lists",
		Long: `lexstatcldf clusters the forms of a CLDF word list into cognate sets
with LingPy, aligns them and writes the result back into the dataset as a
CognateTable.

The dataset is a metadata file, a forms.csv or a directory holding either.
Without an argument Wordlist-metadata.json and then forms.csv in the
current directory are tried.

Examples:
  lexstatcldf                                    # Cluster the dataset in the current directory
  lexstatcldf --method lexstat --threshold 0.55 Wordlist-metadata.json
  lexstatcldf --overwrite --bad-tokens-log bad.json data/
  lexstatcldf --batch datasets.txt               # Process several datasets`,
		Args:          cobra.MaximumNArgs(1),
		Version:       internal.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.lexstatcldf.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: auto, console, json")

	// Pipeline flags
	cmd.Flags().StringVar(&flags.Method, "method", flags.Method, "Distance method: sca, lexstat, edit-dist, turchin")
	cmd.Flags().StringVar(&flags.ClusterMethod, "cluster-method", flags.ClusterMethod, "Cluster method: upgma, single, complete, mcl, infomap")
	cmd.Flags().Float64Var(&flags.Threshold, "threshold", 0, "Clustering threshold (default: engine default)")
	cmd.Flags().BoolVar(&flags.Overwrite, "overwrite", false, "Replace an existing CognateTable (the old one is archived)")
	cmd.Flags().StringVar(&flags.BadTokensLog, "bad-tokens-log", "", "Write tokens LingPy cannot classify to this JSON file")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Process datasets listed in file (one per line)")

	// Engine flags
	cmd.Flags().StringVar(&flags.Python, "python", flags.Python, "Python interpreter with lingpy installed")
	cmd.Flags().StringVar(&flags.EngineInput, "engine-input", flags.EngineInput, "How the flat table reaches the engine: file or memory")
	cmd.Flags().StringVar(&flags.StagingDir, "staging-dir", "", "Directory for staged flat tables (default: OS temp dir)")
	cmd.Flags().StringVar(&flags.EngineOutput, "engine-output", "", "Prefix for LingPy's own TSV dump of the aligned word list")

	// Output flags
	cmd.Flags().StringVar(&flags.SQLitePath, "sqlite", "", "Also export forms and cognates to this SQLite database")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("pipeline.method", cmd.Flags().Lookup("method"))
	viper.BindPFlag("pipeline.cluster_method", cmd.Flags().Lookup("cluster-method"))
	viper.BindPFlag("pipeline.bad_tokens_log", cmd.Flags().Lookup("bad-tokens-log"))
	viper.BindPFlag("engine.python", cmd.Flags().Lookup("python"))
	viper.BindPFlag("engine.input", cmd.Flags().Lookup("engine-input"))
	viper.BindPFlag("engine.staging_dir", cmd.Flags().Lookup("staging-dir"))
	viper.BindPFlag("engine.output", cmd.Flags().Lookup("engine-output"))
	viper.BindPFlag("output.sqlite", cmd.Flags().Lookup("sqlite"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".lexstatcldf" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lexstatcldf")
	}

	// Environment variables
	viper.SetEnvPrefix("LEXSTATCLDF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
