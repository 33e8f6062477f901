// Package config loads seqprobe configuration from YAML files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
	"github.com/probelabs/seqprobe/internal/probe"
)

// Config is the complete seqprobe configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Online  OnlineConfig  `yaml:"online" json:"online"`
	Offline OfflineConfig `yaml:"offline" json:"offline"`
	Probe   ProbeConfig   `yaml:"probe" json:"probe"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

// OnlineConfig configures the catalog API source.
type OnlineConfig struct {
	// Disabled turns the online source off entirely.
	Disabled bool `yaml:"disabled" json:"disabled"`

	BaseURL string `yaml:"base_url" json:"base_url"`

	// MaxQueryTerms caps how many leading terms are sent upstream.
	MaxQueryTerms int `yaml:"max_query_terms" json:"max_query_terms"`

	// Timeout is one HTTP round trip, as a duration string ("10s").
	Timeout string `yaml:"timeout" json:"timeout"`

	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// OfflineConfig configures the local dump source.
type OfflineConfig struct {
	// StrippedPath is the stripped dump file (may be .gz). Empty disables
	// the offline source.
	StrippedPath string `yaml:"stripped_path" json:"stripped_path"`

	// NamesPath is the names dump file (may be .gz).
	NamesPath string `yaml:"names_path" json:"names_path"`

	// MaxScan caps pre-filtered entries per lookup. Zero means unbounded.
	MaxScan int `yaml:"max_scan" json:"max_scan"`

	// IndexDir holds the full-text names index.
	IndexDir string `yaml:"index_dir" json:"index_dir"`

	// WatchDumps reloads dump files on change in serve mode.
	WatchDumps bool `yaml:"watch_dumps" json:"watch_dumps"`
}

// ProbeConfig configures the matching pipeline.
type ProbeConfig struct {
	MaxHits       int    `yaml:"max_hits" json:"max_hits"`
	Rank          string `yaml:"rank" json:"rank"`
	MinMatchLen   int    `yaml:"min_match_len" json:"min_match_len"`
	Relax         bool   `yaml:"relax" json:"relax"`
	RelaxMinTerms int    `yaml:"relax_min_terms" json:"relax_min_terms"`
	Explain       bool   `yaml:"explain" json:"explain"`
	StrictErrors  bool   `yaml:"strict_errors" json:"strict_errors"`
}

// CacheConfig configures the persistent response cache.
type CacheConfig struct {
	// Path is the SQLite database file. Empty disables the cache.
	Path string `yaml:"path" json:"path"`

	TTLDays int `yaml:"ttl_days" json:"ttl_days"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a Config with the defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Online: OnlineConfig{
			BaseURL:       "https://oeis.org",
			MaxQueryTerms: 40,
			Timeout:       "10s",
			UserAgent:     "seqprobe",
		},
		Offline: OfflineConfig{
			MaxScan:  1000,
			IndexDir: filepath.Join(dataDir(), "names.bleve"),
		},
		Probe: ProbeConfig{
			MaxHits:       10,
			Rank:          "strict",
			MinMatchLen:   0,
			RelaxMinTerms: 3,
		},
		Cache: CacheConfig{
			Path:    filepath.Join(dataDir(), "cache.db"),
			TTLDays: 30,
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// dataDir returns the per-user data directory.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".seqprobe")
	}
	return filepath.Join(home, ".seqprobe")
}

// GetUserConfigPath returns the user configuration file path, following
// the XDG base directory convention.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "seqprobe", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "seqprobe", "config.yaml")
	}
	return filepath.Join(home, ".config", "seqprobe", "config.yaml")
}

// Load builds the configuration with increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/seqprobe/config.yaml)
//  3. Local config (.seqprobe.yaml in dir)
//  4. Environment variables (SEQPROBE_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	for _, name := range []string{".seqprobe.yaml", ".seqprobe.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			if err := cfg.loadYAML(path); err != nil {
				return nil, err
			}
			break
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// loadYAML merges a YAML file's non-zero values into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return seqerrors.New(seqerrors.ErrCodeConfigNotFound,
			fmt.Sprintf("cannot read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return seqerrors.ConfigError(
			fmt.Sprintf("cannot parse config file %s", path), err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c. Booleans merge
// only when true, so a file can enable but never silently disable.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Online.Disabled {
		c.Online.Disabled = true
	}
	if other.Online.BaseURL != "" {
		c.Online.BaseURL = other.Online.BaseURL
	}
	if other.Online.MaxQueryTerms != 0 {
		c.Online.MaxQueryTerms = other.Online.MaxQueryTerms
	}
	if other.Online.Timeout != "" {
		c.Online.Timeout = other.Online.Timeout
	}
	if other.Online.UserAgent != "" {
		c.Online.UserAgent = other.Online.UserAgent
	}

	if other.Offline.StrippedPath != "" {
		c.Offline.StrippedPath = other.Offline.StrippedPath
	}
	if other.Offline.NamesPath != "" {
		c.Offline.NamesPath = other.Offline.NamesPath
	}
	if other.Offline.MaxScan != 0 {
		c.Offline.MaxScan = other.Offline.MaxScan
	}
	if other.Offline.IndexDir != "" {
		c.Offline.IndexDir = other.Offline.IndexDir
	}
	if other.Offline.WatchDumps {
		c.Offline.WatchDumps = true
	}

	if other.Probe.MaxHits != 0 {
		c.Probe.MaxHits = other.Probe.MaxHits
	}
	if other.Probe.Rank != "" {
		c.Probe.Rank = other.Probe.Rank
	}
	if other.Probe.MinMatchLen != 0 {
		c.Probe.MinMatchLen = other.Probe.MinMatchLen
	}
	if other.Probe.Relax {
		c.Probe.Relax = true
	}
	if other.Probe.RelaxMinTerms != 0 {
		c.Probe.RelaxMinTerms = other.Probe.RelaxMinTerms
	}
	if other.Probe.Explain {
		c.Probe.Explain = true
	}
	if other.Probe.StrictErrors {
		c.Probe.StrictErrors = true
	}

	if other.Cache.Path != "" {
		c.Cache.Path = other.Cache.Path
	}
	if other.Cache.TTLDays != 0 {
		c.Cache.TTLDays = other.Cache.TTLDays
	}

	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies SEQPROBE_* environment variables, the
// highest precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SEQPROBE_BASE_URL"); v != "" {
		c.Online.BaseURL = v
	}
	if v := os.Getenv("SEQPROBE_NO_ONLINE"); isTruthy(v) {
		c.Online.Disabled = true
	}
	if v := os.Getenv("SEQPROBE_TIMEOUT"); v != "" {
		c.Online.Timeout = v
	}
	if v := os.Getenv("SEQPROBE_OFFLINE_STRIPPED"); v != "" {
		c.Offline.StrippedPath = v
	}
	if v := os.Getenv("SEQPROBE_OFFLINE_NAMES"); v != "" {
		c.Offline.NamesPath = v
	}
	if v := os.Getenv("SEQPROBE_MAX_HITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Probe.MaxHits = n
		}
	}
	if v := os.Getenv("SEQPROBE_RANK"); v != "" {
		c.Probe.Rank = v
	}
	if v := os.Getenv("SEQPROBE_CACHE_DB"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("SEQPROBE_CACHE_TTL_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.TTLDays = n
		}
	}
	if v := os.Getenv("SEQPROBE_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Validate rejects configurations the pipeline would refuse anyway, so
// bad values fail before any provider is built.
func (c *Config) Validate() error {
	if c.Probe.MaxHits <= 0 {
		return seqerrors.ConfigError(
			fmt.Sprintf("probe.max_hits must be positive, got %d", c.Probe.MaxHits), nil)
	}
	if c.Probe.MinMatchLen < 0 {
		return seqerrors.ConfigError(
			fmt.Sprintf("probe.min_match_len must be non-negative, got %d", c.Probe.MinMatchLen), nil)
	}
	if _, ok := probe.ParseRankPolicy(c.Probe.Rank); !ok {
		return seqerrors.ConfigError(
			fmt.Sprintf("unknown probe.rank %q", c.Probe.Rank), nil).
			WithSuggestion(`use "strict" or "prefer-early"`)
	}
	if c.Probe.RelaxMinTerms < 1 {
		return seqerrors.ConfigError(
			fmt.Sprintf("probe.relax_min_terms must be at least 1, got %d", c.Probe.RelaxMinTerms), nil)
	}
	if c.Online.Disabled && c.Offline.StrippedPath == "" {
		return seqerrors.ConfigError("no candidate source configured", nil).
			WithSuggestion("re-enable the online source or set offline.stripped_path")
	}
	if c.Online.MaxQueryTerms <= 0 {
		return seqerrors.ConfigError(
			fmt.Sprintf("online.max_query_terms must be positive, got %d", c.Online.MaxQueryTerms), nil)
	}
	if _, err := c.OnlineTimeout(); err != nil {
		return seqerrors.ConfigError(
			fmt.Sprintf("online.timeout %q is not a duration", c.Online.Timeout), err)
	}
	if c.Cache.TTLDays <= 0 {
		return seqerrors.ConfigError(
			fmt.Sprintf("cache.ttl_days must be positive, got %d", c.Cache.TTLDays), nil)
	}
	return nil
}

// OnlineTimeout parses the online timeout string.
func (c *Config) OnlineTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Online.Timeout)
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLDays) * 24 * time.Hour
}

// ProbeEngineConfig converts the probe section into the engine's config.
func (c *Config) ProbeEngineConfig() probe.Config {
	rank, _ := probe.ParseRankPolicy(c.Probe.Rank)
	return probe.Config{
		MaxHits:       c.Probe.MaxHits,
		Rank:          rank,
		MinMatchLen:   c.Probe.MinMatchLen,
		Relax:         c.Probe.Relax,
		RelaxMinTerms: c.Probe.RelaxMinTerms,
		Explain:       c.Probe.Explain,
		StrictErrors:  c.Probe.StrictErrors,
	}
}

// Save writes the configuration as YAML to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return seqerrors.ConfigError(
			fmt.Sprintf("cannot create config directory for %s", path), err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return seqerrors.ConfigError("cannot serialize config", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return seqerrors.ConfigError(
			fmt.Sprintf("cannot write config file %s", path), err)
	}
	return nil
}
