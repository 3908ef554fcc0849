package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Pirikara/pipgate/internal/arbiter"
	"github.com/Pirikara/pipgate/internal/config"
	"github.com/Pirikara/pipgate/internal/logger"
)

// Exit code reported when arbitration aborts on an unresolvable mix of
// trusted and untrusted candidates.
const exitDependencySecurity = 2

var (
	// Global flags
	configPath     string
	logLevel       string
	logFilePath    string
	untrustedCSV   string
	popularityExpr string
	cacheDir       string
	statsAPIURL    string
	maxCacheAge    int64
	promptAnswer   string
	noInput        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pipgate",
		Short: "pipgate - trust arbitration for package installation candidates",
		Long: `pipgate decides whether a package should be installed from a trusted
private repository or an untrusted public one. Candidates are compared by
version; an untrusted candidate that is strictly newer must clear a
download-count threshold and an operator prompt before it wins.`,
		Example: `  pipgate decide --package sampleproject 1.3.0=repo.internal.example.com 1.3.1=https://pypi.org/simple/
  pipgate decide --input candidates.json
  pipgate stats sampleproject
  pipgate audit list`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.pipgate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "", "Append JSON logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&untrustedCSV, "untrusted", "", "Comma-separated untrusted domains (default: pypi.org,files.pythonhosted.org)")
	rootCmd.PersistentFlags().StringVar(&popularityExpr, "popularity", "", "Popularity threshold expression, e.g. or:last_day=100")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Directory for the popularity cache")
	rootCmd.PersistentFlags().StringVar(&statsAPIURL, "stats-url", "", "Download-stats service base URL")
	rootCmd.PersistentFlags().Int64Var(&maxCacheAge, "max-cache-age", 0, "Popularity cache freshness window in minutes")
	rootCmd.PersistentFlags().StringVar(&promptAnswer, "prompt", "", "Canned prompt answer instead of asking interactively")
	rootCmd.PersistentFlags().BoolVar(&noInput, "no-input", false, "Never prompt; keep the trusted candidate instead")

	// Subcommands
	rootCmd.AddCommand(newDecideCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newAuditCmd())
	rootCmd.AddCommand(newPrintConfigCmd())
	rootCmd.AddCommand(newSelfCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pipgate: %v\n", err)
		var ambiguous *arbiter.AmbiguousCandidatesError
		if errors.As(err, &ambiguous) {
			os.Exit(exitDependencySecurity)
		}
		os.Exit(1)
	}
}

// loadSettings resolves configuration and applies flag overrides on top
// of the file and environment layers. When the dump-config switch is set
// it prints the effective configuration to stderr and exits.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return config.Settings{}, err
	}

	pf := cmd.Root().PersistentFlags()
	if pf.Changed("untrusted") {
		settings.UntrustedDomains = config.SplitList(untrustedCSV)
	}
	if pf.Changed("popularity") {
		settings.Threshold = popularityExpr
	}
	if pf.Changed("cache-dir") {
		settings.CacheDir = cacheDir
	}
	if pf.Changed("stats-url") {
		settings.StatsAPIURL = statsAPIURL
	}
	if pf.Changed("max-cache-age") {
		settings.MaxCacheAgeMinutes = maxCacheAge
	}
	if pf.Changed("prompt") {
		settings.PromptAnswer = promptAnswer
	}
	if pf.Changed("log-file") {
		settings.LogFile = logFilePath
	}

	if settings.DumpConfig {
		settings.Dump(os.Stderr)
		os.Exit(0)
	}
	return settings, nil
}

// openLogger builds the process logger from the global log flags.
func openLogger(settings config.Settings) (*logger.Logger, func(), error) {
	level := logger.LevelInfo
	switch logLevel {
	case "debug":
		level = logger.LevelDebug
	case "warn":
		level = logger.LevelWarn
	case "error":
		level = logger.LevelError
	}

	log, closer, err := logger.Open(settings.LogFile, level)
	if err != nil {
		return nil, nil, err
	}
	return log, func() { closer.Close() }, nil
}
