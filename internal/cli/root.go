package cli

import (
	"fmt"
	"os"

	"github.com/rvachev/tierwatch/internal/logging"
	"github.com/rvachev/tierwatch/internal/model"
	"github.com/rvachev/tierwatch/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	dbPath  string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tierwatch",
	Short: "Tierwatch - trust-tier event/claim verification and risk scoring",
	Long: `Tierwatch ingests financial and regulatory signals from sources of
varying trust, separates verified facts from unverified claims, corroborates
claims against facts, and aggregates both into a composite systemic-risk
score with cascade detection.

Tier 1 sources (regulators, exchanges, official filings) produce facts.
Tier 3 sources (social media) produce claims that must earn confirmation.
Tier 2 sources (credible press) produce both.

Claims are never presented as facts: everything that is not confirmed or
debunked is labeled UNVERIFIED.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tierwatch v0.3.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.tierwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.tierwatch")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TIERWATCH_*
	viper.SetEnvPrefix("TIERWATCH")
	viper.AutomaticEnv()

	// Rule tables (contradiction pairs, hoax fingerprints, allow-list) are
	// re-read on every invocation, so edits take effect on the next command
	// without restarting anything.
	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

// loadConfig builds the configuration snapshot for this invocation.
func loadConfig() (*model.Config, error) {
	var cfg *model.Config
	var err error

	if path := viper.ConfigFileUsed(); path != "" {
		cfg, err = model.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = model.DefaultConfig()
	}

	if db := viper.GetString("db"); db != "" {
		cfg.Database.Path = db
	}
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	if err := logging.Init(level, cfg.Logging.File); err != nil {
		return nil, err
	}

	return cfg, nil
}

// openStore opens the configured database.
func openStore(cfg *model.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.Database.Path, err)
	}
	return st, nil
}
