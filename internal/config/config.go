package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Account AccountConfig `mapstructure:"account"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`

	// DeviceID identifies this install to the backend; minted on first run.
	DeviceID string `mapstructure:"device_id"`
}

// APIConfig holds backend connection configuration.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// AccountConfig holds the logged-in account and its session credential.
// Secure credential storage is a platform concern; the config file stands in
// for it here.
type AccountConfig struct {
	ID           string `mapstructure:"id"`
	Username     string `mapstructure:"username"`
	Email        string `mapstructure:"email"`
	SessionToken string `mapstructure:"session_token"`
}

// CacheConfig holds local cache configuration.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://api.resonate.fm",
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS.
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "resonate", "resonate.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "resonate", "resonate.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS.
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "resonate")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "resonate")
	}
}

// defaultCachePath returns the default cache directory for the current OS.
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "resonate", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "resonate", "cache")
	}
}

// LoadConfig loads configuration from file and environment. A missing config
// file is fine; defaults apply. The device id is minted and persisted on
// first load.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("RESONATE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
		if err := SaveConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to persist device id: %w", err)
		}
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file.
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("api.base_url", cfg.API.BaseURL)
	viper.Set("account.id", cfg.Account.ID)
	viper.Set("account.username", cfg.Account.Username)
	viper.Set("account.email", cfg.Account.Email)
	viper.Set("account.session_token", cfg.Account.SessionToken)
	viper.Set("cache.dir", cfg.Cache.Dir)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)
	viper.Set("device_id", cfg.DeviceID)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearAccountConfig removes the account block (identity and credential)
// while preserving everything else.
func ClearAccountConfig() error {
	viper.Set("account.id", "")
	viper.Set("account.username", "")
	viper.Set("account.email", "")
	viper.Set("account.session_token", "")

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsLoggedIn reports whether an account and credential are configured.
func (c *Config) IsLoggedIn() bool {
	return c.Account.ID != "" && c.Account.SessionToken != ""
}
