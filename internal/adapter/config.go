package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "flickgrid"

// Config holds all application configuration
type Config struct {
	Flickr  FlickrConfig  `mapstructure:"flickr"`
	Search  SearchConfig  `mapstructure:"search"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// FlickrConfig holds the remote API settings
type FlickrConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Method              string        `mapstructure:"method"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxConcurrentImages int           `mapstructure:"max_concurrent_images"`
}

// SearchConfig holds search behavior settings
type SearchConfig struct {
	InitialTag           string `mapstructure:"initial_tag"`
	Fixture              string `mapstructure:"fixture"` // Empty = bundled welcome response
	KeepResultsOnFailure bool   `mapstructure:"keep_results_on_failure"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	GridColumns int      `mapstructure:"grid_columns"`
	MaxTags     int      `mapstructure:"max_tags"`
	Viewer      string   `mapstructure:"viewer"` // Empty = system default (open/xdg-open/start)
	ViewerArgs  []string `mapstructure:"viewer_args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Flickr: FlickrConfig{
			BaseURL:             "https://api.flickr.com/services",
			Method:              "flickr.photos.search",
			Timeout:             120 * time.Second,
			MaxConcurrentImages: 6,
		},
		Search: SearchConfig{
			InitialTag: "Graphic",
		},
		UI: UIConfig{
			GridColumns: 2,
			MaxTags:     3,
			ViewerArgs:  []string{},
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
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// newViper creates a viper instance seeded with defaults and env overrides
func newViper(searchPaths ...string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides (FLICKGRID_FLICKR_API_KEY, ...)
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("flickr.base_url", def.Flickr.BaseURL)
	v.SetDefault("flickr.api_key", def.Flickr.APIKey)
	v.SetDefault("flickr.method", def.Flickr.Method)
	v.SetDefault("flickr.timeout", def.Flickr.Timeout)
	v.SetDefault("flickr.max_concurrent_images", def.Flickr.MaxConcurrentImages)
	v.SetDefault("search.initial_tag", def.Search.InitialTag)
	v.SetDefault("search.fixture", def.Search.Fixture)
	v.SetDefault("search.keep_results_on_failure", def.Search.KeepResultsOnFailure)
	v.SetDefault("ui.grid_columns", def.UI.GridColumns)
	v.SetDefault("ui.max_tags", def.UI.MaxTags)
	v.SetDefault("ui.viewer", def.UI.Viewer)
	v.SetDefault("ui.viewer_args", def.UI.ViewerArgs)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)
	return v
}

// LoadConfig loads configuration from file and environment. With no
// arguments it searches the default config directory and ".".
func LoadConfig(searchPaths ...string) (*Config, error) {
	if len(searchPaths) == 0 {
		searchPaths = []string{DefaultConfigPath(), "."}
	}
	v := newViper(searchPaths...)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to config.yaml in dir (the default directory if empty)
func SaveConfig(cfg *Config, dir string) error {
	if dir == "" {
		dir = DefaultConfigPath()
	}

	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("flickr.base_url", cfg.Flickr.BaseURL)
	v.Set("flickr.api_key", cfg.Flickr.APIKey)
	v.Set("flickr.method", cfg.Flickr.Method)
	v.Set("flickr.timeout", cfg.Flickr.Timeout.String())
	v.Set("flickr.max_concurrent_images", cfg.Flickr.MaxConcurrentImages)

	v.Set("search.initial_tag", cfg.Search.InitialTag)
	v.Set("search.fixture", cfg.Search.Fixture)
	v.Set("search.keep_results_on_failure", cfg.Search.KeepResultsOnFailure)

	v.Set("ui.grid_columns", cfg.UI.GridColumns)
	v.Set("ui.max_tags", cfg.UI.MaxTags)
	v.Set("ui.viewer", cfg.UI.Viewer)
	v.Set("ui.viewer_args", cfg.UI.ViewerArgs)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return c.Flickr.APIKey != ""
}
