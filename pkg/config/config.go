// Package config loads numisref settings from defaults, an optional YAML
// file, .env files and NUMISREF_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	pkgerrors "github.com/coolbeans/numisref/pkg/errors"
)

// EnvPrefix is the prefix for environment overrides: NUMISREF_CACHE_TTL
// overrides cache.ttl.
const EnvPrefix = "NUMISREF"

// Config holds every tunable of the parser engine and the lookup registry.
type Config struct {
	// ConfigFile is the file that was read, if any.
	ConfigFile string

	OCRE ServiceConfig
	CRRO ServiceConfig
	RPC  RPCConfig

	HTTP       HTTPConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Thresholds ThresholdConfig
	Log        LogConfig
}

// ServiceConfig locates a Nomisma-style reconciliation service.
type ServiceConfig struct {
	BaseURL string
	// Limit is the number of candidates requested per query.
	Limit int
}

// RPCConfig controls the Roman Provincial Coinage resolver.
type RPCConfig struct {
	BaseURL string
	// Scrape enables fetching type pages; otherwise RPC lookups are deferred.
	Scrape bool
}

// HTTPConfig configures outbound requests.
type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// CacheConfig configures the lookup result cache.
type CacheConfig struct {
	TTL             time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
}

// RateLimitConfig configures the per-system sliding window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// ThresholdConfig holds the confidence cutoffs.
type ThresholdConfig struct {
	SuccessCutoff float64
	ReviewCutoff  float64
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level  string
	Format string
	Output string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ocre.base_url", "http://numismatics.org/ocre/")
	v.SetDefault("ocre.limit", 5)
	v.SetDefault("crro.base_url", "http://numismatics.org/crro/")
	v.SetDefault("crro.limit", 5)
	v.SetDefault("rpc.base_url", "https://rpc.ashmus.ox.ac.uk/")
	v.SetDefault("rpc.scrape", false)

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "numisref/1.0 (+https://github.com/coolbeans/numisref)")

	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.max_entries", 10000)
	v.SetDefault("cache.cleanup_interval", time.Hour)

	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("thresholds.success_cutoff", 0.8)
	v.SetDefault("thresholds.review_cutoff", 0.92)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
}

// Default returns the configuration with no file or environment applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// Load builds the configuration. An explicit path must exist; without one,
// ".numisref.yaml" is looked up in the working and home directories and
// silently skipped when absent.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(".numisref")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ConfigFile: v.ConfigFileUsed(),
		OCRE: ServiceConfig{
			BaseURL: v.GetString("ocre.base_url"),
			Limit:   v.GetInt("ocre.limit"),
		},
		CRRO: ServiceConfig{
			BaseURL: v.GetString("crro.base_url"),
			Limit:   v.GetInt("crro.limit"),
		},
		RPC: RPCConfig{
			BaseURL: v.GetString("rpc.base_url"),
			Scrape:  v.GetBool("rpc.scrape"),
		},
		HTTP: HTTPConfig{
			Timeout:   v.GetDuration("http.timeout"),
			UserAgent: v.GetString("http.user_agent"),
		},
		Cache: CacheConfig{
			TTL:             v.GetDuration("cache.ttl"),
			MaxEntries:      v.GetInt("cache.max_entries"),
			CleanupInterval: v.GetDuration("cache.cleanup_interval"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
		Thresholds: ThresholdConfig{
			SuccessCutoff: v.GetFloat64("thresholds.success_cutoff"),
			ReviewCutoff:  v.GetFloat64("thresholds.review_cutoff"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}
}

// Validate rejects settings the registry cannot run with.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"ocre.base_url": c.OCRE.BaseURL,
		"crro.base_url": c.CRRO.BaseURL,
		"rpc.base_url":  c.RPC.BaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: %s must be an absolute URL, got %q", pkgerrors.ErrInvalidInput, name, raw)
		}
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("%w: http.timeout must be positive", pkgerrors.ErrInvalidInput)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("%w: rate_limit.requests and rate_limit.window must be positive", pkgerrors.ErrInvalidInput)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache.ttl must be positive", pkgerrors.ErrInvalidInput)
	}
	for name, cutoff := range map[string]float64{
		"thresholds.success_cutoff": c.Thresholds.SuccessCutoff,
		"thresholds.review_cutoff":  c.Thresholds.ReviewCutoff,
	} {
		if cutoff <= 0 || cutoff > 1 {
			return fmt.Errorf("%w: %s must be in (0, 1], got %v", pkgerrors.ErrInvalidInput, name, cutoff)
		}
	}
	return nil
}

// loadEnvFiles loads .env then .env.local. godotenv never overrides
// variables that are already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
