package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "queuebot.yaml"

// DefaultGameID is A Link to the Past on speedrun.com.
const DefaultGameID = "9d3rr0dl"

// Config represents the queuebot configuration.
type Config struct {
	Discord      DiscordConfig `yaml:"discord"`
	Source       SourceConfig  `yaml:"source"`
	PollInterval time.Duration `yaml:"poll_interval"`
	DatabaseURL  string        `yaml:"database_url"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	Log          LogConfig     `yaml:"log"`
}

// DiscordConfig configures the notification gateway.
type DiscordConfig struct {
	Token          string        `yaml:"token"`
	ApplicationID  string        `yaml:"application_id,omitempty"`
	ChannelID      string        `yaml:"channel_id"`
	ChannelInfoTTL time.Duration `yaml:"channel_info_ttl"`
	BaseURL        string        `yaml:"base_url"`
}

// SourceConfig configures the submission source.
type SourceConfig struct {
	GameID   string `yaml:"game_id"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key,omitempty"`
	PageSize int    `yaml:"page_size"`
	// NotFoundMarker is matched against source error text to detect a
	// submission that was removed from the queue.
	NotFoundMarker string `yaml:"not_found_marker"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a config with every optional value filled in.
func Default() *Config {
	return &Config{
		Discord: DiscordConfig{
			ChannelInfoTTL: time.Hour,
			BaseURL:        "https://discord.com/api/v10",
		},
		Source: SourceConfig{
			GameID:         DefaultGameID,
			BaseURL:        "https://www.speedrun.com/api/v1",
			PageSize:       200,
			NotFoundMarker: "could not be found",
		},
		PollInterval: time.Minute,
		DatabaseURL:  "queuebot.db",
		HTTPTimeout:  30 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path (if present) over the defaults, then
// applies environment overrides.
// A missing file at DefaultPath is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// env-only configuration
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides values from the environment, using the variable names
// of the previous deployment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	secs := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("unable to parse %s as an integer: %w", key, err)
		}
		*dst = time.Duration(n) * time.Second
		return nil
	}

	str("BOT_TOKEN", &c.Discord.Token)
	str("APPLICATION_ID", &c.Discord.ApplicationID)
	str("CHANNEL_ID", &c.Discord.ChannelID)
	str("DISCORD_API_URL", &c.Discord.BaseURL)
	str("SRC_GAME_ID", &c.Source.GameID)
	str("SRC_API_URL", &c.Source.BaseURL)
	str("SRC_API_KEY", &c.Source.APIKey)
	str("DATABASE_URL", &c.DatabaseURL)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if err := secs("CHANNEL_INFO_TTL_SECS", &c.Discord.ChannelInfoTTL); err != nil {
		return err
	}
	return secs("POLL_INTERVAL_SECS", &c.PollInterval)
}

// ValidateStore checks the settings needed to open the record store.
func (c *Config) ValidateStore() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("database_url (DATABASE_URL) is required")
	}
	return nil
}

// Validate checks every setting needed to run the poll loop and reports
// all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.ValidateStore(); err != nil {
		errs = append(errs, err)
	}
	if c.Discord.Token == "" {
		errs = append(errs, errors.New("discord.token (BOT_TOKEN) is required"))
	}
	if c.Discord.ChannelID == "" {
		errs = append(errs, errors.New("discord.channel_id (CHANNEL_ID) is required"))
	} else if _, err := strconv.ParseUint(c.Discord.ChannelID, 10, 64); err != nil {
		errs = append(errs, fmt.Errorf("discord.channel_id must be a numeric snowflake: %q", c.Discord.ChannelID))
	}
	if c.Discord.BaseURL == "" {
		errs = append(errs, errors.New("discord.base_url is required"))
	}
	if c.Discord.ChannelInfoTTL <= 0 {
		errs = append(errs, errors.New("discord.channel_info_ttl must be positive"))
	}
	if c.Source.GameID == "" {
		errs = append(errs, errors.New("source.game_id (SRC_GAME_ID) is required"))
	}
	if c.Source.BaseURL == "" {
		errs = append(errs, errors.New("source.base_url is required"))
	}
	if c.Source.PageSize <= 0 || c.Source.PageSize > 200 {
		errs = append(errs, fmt.Errorf("source.page_size must be between 1 and 200, got %d", c.Source.PageSize))
	}
	if strings.TrimSpace(c.Source.NotFoundMarker) == "" {
		errs = append(errs, errors.New("source.not_found_marker must not be empty"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll_interval (POLL_INTERVAL_SECS) must be positive"))
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, errors.New("http_timeout must not be negative"))
	}
	return errors.Join(errs...)
}
