package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Telegram    TelegramConfig    `toml:"telegram"`
	Search      SearchConfig      `toml:"search"`
	Credentials CredentialsConfig `toml:"credentials"`
	Fetch       FetchConfig       `toml:"fetch"`
	Cache       CacheConfig       `toml:"cache"`
	Server      ServerConfig      `toml:"server"`
}

// TelegramConfig contains chat transport settings.
type TelegramConfig struct {
	Token              string `toml:"token"`
	APIBaseURL         string `toml:"api_base_url"`
	PollTimeoutSeconds int    `toml:"poll_timeout_seconds"`
}

// SearchConfig contains catalog search settings.
type SearchConfig struct {
	Provider  string  `toml:"provider"`
	Limit     int     `toml:"limit"`
	RateLimit float64 `toml:"rate_limit"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the optional Spotify API credential pair.
// When both fields are set, Spotify becomes the primary search provider.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// FetchConfig controls how audio is obtained for a selected candidate.
type FetchConfig struct {
	Strategy              string `toml:"strategy"`
	Binary                string `toml:"binary"`
	AudioFormat           string `toml:"audio_format"`
	TimeoutSeconds        int    `toml:"timeout_seconds"`
	PreviewTimeoutSeconds int    `toml:"preview_timeout_seconds"`
	Workers               int    `toml:"workers"`
}

// CacheConfig contains fetched-track cache settings.
type CacheConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP status server settings.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BotToken returns the Telegram bot token, preferring the BOT_TOKEN
// environment variable over the config file.
func (c *Config) BotToken() string {
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		return token
	}
	return c.Telegram.Token
}

// ValidateForBot checks the settings the bot process cannot start without.
// A missing token is the only fatal startup condition; absent Spotify
// credentials silently select the default provider.
func (c *Config) ValidateForBot() error {
	if c.BotToken() == "" {
		return fmt.Errorf("%w: telegram token not set (config [telegram].token or BOT_TOKEN)", ErrMissingCredentials)
	}
	if c.Fetch.Strategy != "preview" && c.Fetch.Strategy != "full" {
		return fmt.Errorf("%w: fetch strategy must be preview or full, got %q", ErrInvalidConfig, c.Fetch.Strategy)
	}
	return nil
}
