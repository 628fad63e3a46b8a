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

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Client  ClientConfig  `mapstructure:"client"`
	Logging LoggingConfig `mapstructure:"logging"`
	Store   StoreConfig   `mapstructure:"store"`
	UI      UIConfig      `mapstructure:"ui"`
}

// ServerConfig holds Subsonic server connection settings
type ServerConfig struct {
	URL        string `mapstructure:"url"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	LegacyAuth bool   `mapstructure:"legacy_auth"` // plaintext (hex) password for servers without token auth
}

// ClientConfig holds Subsonic API client settings
type ClientConfig struct {
	ID         string `mapstructure:"id"`
	APIVersion string `mapstructure:"api_version"`
	Timeout    int    `mapstructure:"timeout"` // in seconds
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// StoreConfig holds the saved-queue database location
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds TUI configuration
type UIConfig struct {
	RefreshInterval int     `mapstructure:"refresh_interval"` // in seconds
	VolumeStep      float64 `mapstructure:"volume_step"`
}

// GetTimeout returns the HTTP timeout as a time.Duration
func (c ClientConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetPath returns the store path with "~" expanded
func (s StoreConfig) GetPath() (string, error) {
	return expandHome(s.Path)
}

// GetRefreshInterval returns the TUI status refresh interval
func (u UIConfig) GetRefreshInterval() time.Duration {
	return time.Duration(u.RefreshInterval) * time.Second
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			ID:         "juke",
			APIVersion: "1.16.1",
			Timeout:    30,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		Store: StoreConfig{
			Path: filepath.Join(defaultDataPath(), "queues.db"),
		},
		UI: UIConfig{
			RefreshInterval: 2,
			VolumeStep:      0.05,
		},
	}
}

// defaultDataPath returns the per-user data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "juke")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "juke")
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	return filepath.Join(defaultDataPath(), "juke.log")
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "juke")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "juke")
	}
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper(), "")
}

// LoadConfigFrom loads configuration into v. An empty configFile searches the
// default config directory and the working directory.
func LoadConfigFrom(v *viper.Viper, configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	for key, value := range configValues(cfg) {
		v.SetDefault(key, value)
	}

	// Environment variable overrides (JUKE_SERVER_URL, ...)
	v.SetEnvPrefix("JUKE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	bindKeys(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile != "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// bindKeys registers every known key so AutomaticEnv applies on Unmarshal
func bindKeys(v *viper.Viper) {
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
}

var envKeyReplacer = strings.NewReplacer(".", "_")

var configKeys = []string{
	"server.url",
	"server.username",
	"server.password",
	"server.legacy_auth",
	"client.id",
	"client.api_version",
	"client.timeout",
	"logging.file",
	"logging.level",
	"store.path",
	"ui.refresh_interval",
	"ui.volume_step",
}

// configValues flattens cfg into its snake_case keys
func configValues(cfg *Config) map[string]any {
	return map[string]any{
		"server.url":          cfg.Server.URL,
		"server.username":     cfg.Server.Username,
		"server.password":     cfg.Server.Password,
		"server.legacy_auth":  cfg.Server.LegacyAuth,
		"client.id":           cfg.Client.ID,
		"client.api_version":  cfg.Client.APIVersion,
		"client.timeout":      cfg.Client.Timeout,
		"logging.file":        cfg.Logging.File,
		"logging.level":       cfg.Logging.Level,
		"store.path":          cfg.Store.Path,
		"ui.refresh_interval": cfg.UI.RefreshInterval,
		"ui.volume_step":      cfg.UI.VolumeStep,
	}
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(viper.GetViper(), filepath.Join(defaultConfigPath(), "config.yaml"), cfg)
}

// SaveConfigTo writes cfg to configFile through v
func SaveConfigTo(v *viper.Viper, configFile string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	for key, value := range configValues(cfg) {
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Credentials live in this file
	if err := os.Chmod(configFile, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the server URL and username are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.Username != ""
}
