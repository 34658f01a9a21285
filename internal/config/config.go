// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Storage StorageConfig `mapstructure:"storage"`
	Logs    LogsConfig    `mapstructure:"logs"`
	Logging LoggingConfig `mapstructure:"logging"`
	Ops     OpsConfig     `mapstructure:"ops"`

	// Hosts is declared as a list because hostnames contain dots, which
	// Viper would otherwise treat as key delimiters. Lookups go through
	// the index built at load time.
	Hosts []HostRule `mapstructure:"hosts"`

	rules map[string]HostRule
}

// CrawlerConfig governs dispatcher and crawl pipeline behavior.
type CrawlerConfig struct {
	MaxConcurrency int    `mapstructure:"max_concurrency"`
	TitleSearch    string `mapstructure:"title_search"`
	TitleReplace   string `mapstructure:"title_replace"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// StorageConfig sets the content-store directory for persisted artifacts.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LogsConfig sets the root under which per-day crawl log directories live.
type LogsConfig struct {
	ResultsDir string `mapstructure:"results_dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// OpsConfig controls the optional operational HTTP endpoint. An empty Addr
// disables it.
type OpsConfig struct {
	Addr string `mapstructure:"addr"`
}

// HostRule holds the per-host crawl settings. Hosts without an entry fall
// back to zero delay and no body selector.
type HostRule struct {
	Hostname     string `mapstructure:"hostname"`
	DelaySeconds int    `mapstructure:"delay_seconds"`
	BodySelector string `mapstructure:"body_selector"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLIPCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cfg.rules = make(map[string]HostRule, len(cfg.Hosts))
	for _, rule := range cfg.Hosts {
		cfg.rules[strings.ToLower(rule.Hostname)] = rule
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.max_concurrency", 4)
	v.SetDefault("crawler.title_search", "")
	v.SetDefault("crawler.title_replace", "")
	v.SetDefault("crawler.timeout_seconds", 10)
	v.SetDefault("crawler.user_agent", "clipcrawl/1.0")
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("logs.results_dir", "results")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.MaxConcurrency <= 0 {
		return fmt.Errorf("crawler.max_concurrency must be > 0")
	}
	if c.Crawler.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.timeout_seconds must be > 0")
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return fmt.Errorf("storage.data_dir must be set")
	}
	if strings.TrimSpace(c.Logs.ResultsDir) == "" {
		return fmt.Errorf("logs.results_dir must be set")
	}
	for _, rule := range c.Hosts {
		if strings.TrimSpace(rule.Hostname) == "" {
			return fmt.Errorf("host rules require a hostname")
		}
		if rule.DelaySeconds < 0 {
			return fmt.Errorf("hosts.%s delay_seconds must be >= 0", rule.Hostname)
		}
	}
	return nil
}

// FetchTimeout converts the configured timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.TimeoutSeconds) * time.Second
}

// DelayFor returns the pacing delay for hostname, zero when the host has no
// configuration entry. Safe for concurrent use: the rule index is never
// mutated after Load.
func (c Config) DelayFor(hostname string) time.Duration {
	rule, ok := c.ruleFor(hostname)
	if !ok {
		return 0
	}
	return time.Duration(rule.DelaySeconds) * time.Second
}

// SelectorFor returns the configured body selector for hostname, empty when
// the host has no configuration entry.
func (c Config) SelectorFor(hostname string) string {
	rule, ok := c.ruleFor(hostname)
	if !ok {
		return ""
	}
	return rule.BodySelector
}

func (c Config) ruleFor(hostname string) (HostRule, bool) {
	key := strings.ToLower(hostname)
	if c.rules != nil {
		rule, ok := c.rules[key]
		return rule, ok
	}
	for _, rule := range c.Hosts {
		if strings.ToLower(rule.Hostname) == key {
			return rule, true
		}
	}
	return HostRule{}, false
}

// Global bundles the settings the dispatcher needs, so the scheduling core
// takes an explicit value instead of reaching into ambient configuration.
type Global struct {
	MaxConcurrency int
	TitleSearch    string
	TitleReplace   string
}

// GlobalSettings returns the explicit global settings value.
func (c Config) GlobalSettings() Global {
	return Global{
		MaxConcurrency: c.Crawler.MaxConcurrency,
		TitleSearch:    c.Crawler.TitleSearch,
		TitleReplace:   c.Crawler.TitleReplace,
	}
}
