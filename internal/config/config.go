// Package config resolves pipgate settings from defaults, an optional
// YAML file and PIPGATE_* environment variables, in that order.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Pirikara/pipgate/internal/popularity"
	"github.com/Pirikara/pipgate/internal/threshold"
)

// Environment variables overriding file and default settings.
const (
	EnvUntrusted   = "PIPGATE_UNTRUSTED"
	EnvPopularity  = "PIPGATE_POPULARITY"
	EnvCacheDir    = "PIPGATE_CACHE"
	EnvStatsAPIURL = "PIPGATE_STATS_API_URL"
	EnvMaxCacheAge = "PIPGATE_MAX_CACHE_AGE"
	EnvDumpConfig  = "PIPGATE_DUMP_CONFIG"
	EnvPrompt      = "PIPGATE_PROMPT"
	EnvLogFile     = "PIPGATE_LOG_FILE"
	EnvJournal     = "PIPGATE_JOURNAL"
)

const configDirName = ".pipgate"

// Settings represents the resolved pipgate configuration
type Settings struct {
	UntrustedDomains   []string `yaml:"untrusted_domains"`
	Threshold          string   `yaml:"popularity_threshold"`
	CacheDir           string   `yaml:"cache_dir"`
	StatsAPIURL        string   `yaml:"stats_api_url"`
	MaxCacheAgeMinutes int64    `yaml:"max_cache_age_minutes"`
	PromptAnswer       string   `yaml:"prompt_answer"`
	LogFile            string   `yaml:"log_file"`
	JournalPath        string   `yaml:"journal_path"`

	// DumpConfig is set from the environment only; it is a debugging
	// trigger, not a persisted setting.
	DumpConfig bool `yaml:"-"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		UntrustedDomains:   []string{"pypi.org", "files.pythonhosted.org"},
		Threshold:          "",
		CacheDir:           defaultCacheDir(),
		StatsAPIURL:        popularity.DefaultBaseURL,
		MaxCacheAgeMinutes: 24 * 60,
		JournalPath:        defaultJournalPath(),
	}
}

// defaultCacheDir prefers a persistent per-user cache directory when the
// operator has created one; everything else lands in a date-stamped
// directory under the system temp dir.
func defaultCacheDir() string {
	if runtime.GOOS != "windows" {
		if home, err := os.UserHomeDir(); err == nil {
			dir := filepath.Join(home, ".cache", "pipgate")
			if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
				return dir
			}
		}
	}
	return filepath.Join(os.TempDir(), "pipgate-cache-"+time.Now().Format("20060102"))
}

func defaultJournalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDirName, "decisions.db")
}

// Load resolves settings with 3-level fallback:
// 1. Explicit path (--config flag)
// 2. Home directory (~/.pipgate/config.yaml)
// 3. Built-in defaults
// Environment variables are applied on top of whichever level loaded.
func Load(path string) (Settings, error) {
	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, &ConfigError{Setting: "config file", Err: err}
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, &ConfigError{Setting: "config file", Err: err}
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, configDirName, "config.yaml")
		if fileExists(homeConfig) {
			data, err := os.ReadFile(homeConfig)
			if err == nil {
				if err := yaml.Unmarshal(data, &s); err != nil {
					return Settings{}, &ConfigError{Setting: "config file", Err: err}
				}
			}
		}
	}

	if err := applyEnv(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyEnv(s *Settings) error {
	if v, ok := os.LookupEnv(EnvUntrusted); ok {
		s.UntrustedDomains = SplitList(v)
	}
	if v, ok := os.LookupEnv(EnvPopularity); ok {
		s.Threshold = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvCacheDir); ok && v != "" {
		s.CacheDir = v
	}
	if v, ok := os.LookupEnv(EnvStatsAPIURL); ok && v != "" {
		s.StatsAPIURL = v
	}
	if v, ok := os.LookupEnv(EnvMaxCacheAge); ok {
		minutes, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return &ConfigError{Setting: EnvMaxCacheAge, Err: fmt.Errorf("%q is not an integer", v)}
		}
		s.MaxCacheAgeMinutes = minutes
	}
	if v, ok := os.LookupEnv(EnvPrompt); ok {
		s.PromptAnswer = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		s.LogFile = v
	}
	if v, ok := os.LookupEnv(EnvJournal); ok {
		s.JournalPath = v
	}
	s.DumpConfig = isTruthy(os.Getenv(EnvDumpConfig))
	return nil
}

// Validate checks the settings eagerly so misconfiguration surfaces
// before any arbitration runs.
func (s Settings) Validate() error {
	if _, err := threshold.Parse(s.Threshold); err != nil {
		return &ConfigError{Setting: EnvPopularity, Err: err}
	}
	if s.MaxCacheAgeMinutes < 0 {
		return &ConfigError{Setting: EnvMaxCacheAge, Err: fmt.Errorf("must not be negative, got %d", s.MaxCacheAgeMinutes)}
	}
	if s.CacheDir == "" {
		return &ConfigError{Setting: EnvCacheDir, Err: fmt.Errorf("cache directory must not be empty")}
	}
	return nil
}

// ThresholdSpec parses the configured threshold expression.
func (s Settings) ThresholdSpec() (threshold.Spec, error) {
	return threshold.Parse(s.Threshold)
}

// MaxCacheAge returns the cache freshness window as a duration.
func (s Settings) MaxCacheAge() time.Duration {
	return time.Duration(s.MaxCacheAgeMinutes) * time.Minute
}

// Dump writes the effective settings as env-style lines.
func (s Settings) Dump(w io.Writer) {
	fmt.Fprintf(w, "%s=%s\n", EnvUntrusted, strings.Join(s.UntrustedDomains, ","))
	fmt.Fprintf(w, "%s=%s\n", EnvPopularity, s.Threshold)
	fmt.Fprintf(w, "%s=%s\n", EnvCacheDir, s.CacheDir)
	fmt.Fprintf(w, "%s=%s\n", EnvStatsAPIURL, s.StatsAPIURL)
	fmt.Fprintf(w, "%s=%d\n", EnvMaxCacheAge, s.MaxCacheAgeMinutes)
	fmt.Fprintf(w, "%s=%s\n", EnvPrompt, s.PromptAnswer)
	fmt.Fprintf(w, "%s=%s\n", EnvLogFile, s.LogFile)
	fmt.Fprintf(w, "%s=%s\n", EnvJournal, s.JournalPath)
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Setting string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %v", e.Setting, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SplitList splits a comma-separated setting into trimmed entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "yes", "true":
		return true
	default:
		return false
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
