package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// CacheBackend identifies the result cache backing store
type CacheBackend string

const (
	CacheBackendBolt  CacheBackend = "bolt"
	CacheBackendRedis CacheBackend = "redis"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Search  SearchConfig  `mapstructure:"search"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds the upstream service endpoints
type APIConfig struct {
	MetadataURL  string `mapstructure:"metadata_url"`  // anime metadata service
	ImageURL     string `mapstructure:"image_url"`     // reverse image search service
	TranslateURL string `mapstructure:"translate_url"` // machine translation service
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	Backend   CacheBackend  `mapstructure:"backend"`    // "bolt" or "redis"
	Dir       string        `mapstructure:"dir"`        // bolt only
	RedisAddr string        `mapstructure:"redis_addr"` // redis only
	TTL       time.Duration `mapstructure:"ttl"`
}

// SearchConfig holds search behavior configuration
type SearchConfig struct {
	PageLimit  int `mapstructure:"page_limit"`  // results per page
	HistoryMax int `mapstructure:"history_max"` // history list cap
}

// GatewayConfig holds offline gateway configuration
type GatewayConfig struct {
	Listen      string   `mapstructure:"listen"`       // listen address
	ShellOrigin string   `mapstructure:"shell_origin"` // origin serving the app shell
	ShellAssets []string `mapstructure:"shell_assets"` // paths prefetched at install
	Version     string   `mapstructure:"version"`      // snapshot version tag
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			MetadataURL:  "https://api.jikan.moe/v4",
			ImageURL:     "https://api.trace.moe",
			TranslateURL: "https://libretranslate.de",
		},
		Cache: CacheConfig{
			Backend: CacheBackendBolt,
			Dir:     defaultCachePath(),
			TTL:     24 * time.Hour,
		},
		Search: SearchConfig{
			PageLimit:  12,
			HistoryMax: 10,
		},
		Gateway: GatewayConfig{
			Listen:      ":8780",
			ShellOrigin: "http://localhost:8080",
			ShellAssets: []string{"/", "/index.html", "/app.js", "/manifest.json"},
			Version:     "animesearch-v1",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "animesearch", "animesearch.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "animesearch", "animesearch.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "animesearch")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "animesearch")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "animesearch", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "animesearch", "cache")
	}
}

// DataPath returns the directory holding persisted lists and caches
func DataPath() string {
	return defaultCachePath()
}

// Exists reports whether a config file has already been written.
func Exists() bool {
	_, err := os.Stat(filepath.Join(defaultConfigPath(), "config.yaml"))
	return err == nil
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("ANIMESEARCH")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("api.metadata_url", cfg.API.MetadataURL)
	viper.Set("api.image_url", cfg.API.ImageURL)
	viper.Set("api.translate_url", cfg.API.TranslateURL)

	viper.Set("cache.backend", cfg.Cache.Backend)
	viper.Set("cache.dir", cfg.Cache.Dir)
	viper.Set("cache.redis_addr", cfg.Cache.RedisAddr)
	viper.Set("cache.ttl", cfg.Cache.TTL)

	viper.Set("search.page_limit", cfg.Search.PageLimit)
	viper.Set("search.history_max", cfg.Search.HistoryMax)

	viper.Set("gateway.listen", cfg.Gateway.Listen)
	viper.Set("gateway.shell_origin", cfg.Gateway.ShellOrigin)
	viper.Set("gateway.shell_assets", cfg.Gateway.ShellAssets)
	viper.Set("gateway.version", cfg.Gateway.Version)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearCache removes all cached data
func ClearCache() error {
	cachePath := defaultCachePath()
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
