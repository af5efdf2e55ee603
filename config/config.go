// Package config manages kagglemcp configuration via Viper.
//
// Configuration is merged from defaults, an optional kagglemcp.toml found by
// walking up from the working directory, and KAGGLE_-prefixed environment
// variables (KAGGLE_USERNAME, KAGGLE_KEY, KAGGLE_DOWNLOAD_PATH, ...).
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/quantfold/kagglemcp/errors"
)

// Config holds all kagglemcp settings.
type Config struct {
	// Kaggle API credentials. Usually sourced from KAGGLE_USERNAME /
	// KAGGLE_KEY or ~/.kaggle/kaggle.json rather than a config file.
	Username string `mapstructure:"username"`
	Key      string `mapstructure:"key"`

	// DownloadPath is the default directory for competition/dataset files
	DownloadPath string `mapstructure:"download_path"`

	Log        LogConfig        `mapstructure:"log"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Cache      CacheConfig      `mapstructure:"cache"`
	HTTP       HTTPConfig       `mapstructure:"http"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// PaginationConfig bounds list-style requests.
type PaginationConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// CacheConfig holds per-category cache freshness windows in seconds.
type CacheConfig struct {
	CompetitionsTTLSeconds int `mapstructure:"competitions_ttl_seconds"`
	DatasetsTTLSeconds     int `mapstructure:"datasets_ttl_seconds"`
	ModelsTTLSeconds       int `mapstructure:"models_ttl_seconds"`
}

// HTTPConfig tunes the upstream API client.
type HTTPConfig struct {
	TimeoutSeconds    int `mapstructure:"timeout_seconds"`
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// CompetitionsTTL returns the competitions cache window as a duration.
func (c *Config) CompetitionsTTL() time.Duration {
	return time.Duration(c.Cache.CompetitionsTTLSeconds) * time.Second
}

// DatasetsTTL returns the datasets cache window as a duration.
func (c *Config) DatasetsTTL() time.Duration {
	return time.Duration(c.Cache.DatasetsTTLSeconds) * time.Second
}

// ModelsTTL returns the models cache window as a duration.
func (c *Config) ModelsTTL() time.Duration {
	return time.Duration(c.Cache.ModelsTTLSeconds) * time.Second
}

// HTTPTimeout returns the upstream request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the kagglemcp configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("KAGGLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// KAGGLE_USERNAME / KAGGLE_KEY / KAGGLE_DOWNLOAD_PATH are the
	// conventional kaggle CLI variables; bind them explicitly so they
	// resolve even without a config file.
	v.BindEnv("username")
	v.BindEnv("key")
	v.BindEnv("download_path")

	SetDefaults(v)

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		// Missing or unreadable file is not fatal; defaults and env apply
		_ = v.ReadInConfig()
	}

	viperInstance = v
	return v
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("download_path", "./kaggle_data")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("pagination.default_page_size", 20)
	v.SetDefault("pagination.max_page_size", 100)

	v.SetDefault("cache.competitions_ttl_seconds", 3600)  // 1 hour
	v.SetDefault("cache.datasets_ttl_seconds", 21600)     // 6 hours
	v.SetDefault("cache.models_ttl_seconds", 21600)       // 6 hours

	v.SetDefault("http.timeout_seconds", 60)
	v.SetDefault("http.requests_per_minute", 60)
}

// findProjectConfig searches for kagglemcp.toml by walking up the directory
// tree. Returns the first config file found, or empty string if none.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, "kagglemcp.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// HasCredentials reports whether Kaggle API credentials are available,
// either as ~/.kaggle/kaggle.json or as username/key settings.
func (c *Config) HasCredentials() bool {
	if home, err := os.UserHomeDir(); err == nil {
		if _, err := os.Stat(filepath.Join(home, ".kaggle", "kaggle.json")); err == nil {
			return true
		}
	}
	return c.Username != "" && c.Key != ""
}

// ResolveDownloadPath returns customPath when set, else the configured default.
func (c *Config) ResolveDownloadPath(customPath string) string {
	if customPath != "" {
		return customPath
	}
	return c.DownloadPath
}

// EnsureDownloadDir creates the download directory if needed and returns its path.
func EnsureDownloadDir(path string) (string, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create download directory %s", path)
	}
	return path, nil
}
