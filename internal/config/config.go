package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	PandaScore PandaScoreConfig    `mapstructure:"pandascore"`
	Engine     EngineConfig        `mapstructure:"engine"`
	Push       PushConfig          `mapstructure:"push"`
	Telegram   TelegramConfig      `mapstructure:"telegram"`
	Storage    StorageConfig       `mapstructure:"storage"`
	Server     ServerConfig        `mapstructure:"server"`
	Logging    LoggingConfig       `mapstructure:"logging"`
	Aliases    map[string][]string `mapstructure:"aliases"`
}

// PandaScoreConfig holds upstream API configuration
type PandaScoreConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Token          string        `mapstructure:"token"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	Timeout        time.Duration `mapstructure:"timeout"`
	PerPage        int           `mapstructure:"per_page"`
	MaxPages       int           `mapstructure:"max_pages"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// EngineConfig holds sync and detection behavior configuration
type EngineConfig struct {
	ReminderWindow time.Duration `mapstructure:"reminder_window"`
	MinPrizePool   int64         `mapstructure:"min_prize_pool"`
	MatchTTL       time.Duration `mapstructure:"match_ttl"`
	SnapshotTTL    time.Duration `mapstructure:"snapshot_ttl"`
	StandingsTTL   time.Duration `mapstructure:"standings_ttl"`
}

// PushConfig holds push notification transport configuration
type PushConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Endpoint       string        `mapstructure:"endpoint"`
	ServerKey      string        `mapstructure:"server_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// TelegramConfig holds ops alerting configuration
type TelegramConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("CS2_BACKEND")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("pandascore.base_url", "https://api.pandascore.co")
	v.SetDefault("pandascore.poll_interval", "1m")
	v.SetDefault("pandascore.timeout", "30s")
	v.SetDefault("pandascore.per_page", 50)
	v.SetDefault("pandascore.max_pages", 3)
	v.SetDefault("pandascore.max_retries", 3)
	v.SetDefault("pandascore.retry_delay_base", "1s")

	v.SetDefault("engine.reminder_window", "15m")
	v.SetDefault("engine.min_prize_pool", 100000)
	v.SetDefault("engine.match_ttl", "168h") // 7 days of inactivity before history drops
	v.SetDefault("engine.snapshot_ttl", "24h")
	v.SetDefault("engine.standings_ttl", "5m")

	v.SetDefault("push.enabled", false)
	v.SetDefault("push.endpoint", "")
	v.SetDefault("push.timeout", "10s")
	v.SetDefault("push.max_retries", 3)
	v.SetDefault("push.retry_delay_base", "1s")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	v.SetDefault("storage.db_path", "./data/cs2-backend.db")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.PandaScore.BaseURL == "" {
		return fmt.Errorf("pandascore.base_url is required")
	}
	if c.PandaScore.Token == "" {
		return fmt.Errorf("pandascore.token is required")
	}
	if c.PandaScore.PollInterval < 30*time.Second {
		return fmt.Errorf("pandascore.poll_interval must be at least 30 seconds")
	}
	if c.PandaScore.PerPage < 1 || c.PandaScore.PerPage > 100 {
		return fmt.Errorf("pandascore.per_page must be between 1 and 100")
	}
	if c.PandaScore.MaxPages < 1 {
		return fmt.Errorf("pandascore.max_pages must be at least 1")
	}

	if c.Engine.ReminderWindow < time.Minute {
		return fmt.Errorf("engine.reminder_window must be at least 1 minute")
	}
	if c.Engine.MinPrizePool < 0 {
		return fmt.Errorf("engine.min_prize_pool must not be negative")
	}
	if c.Engine.MatchTTL < time.Hour {
		return fmt.Errorf("engine.match_ttl must be at least 1 hour")
	}

	if c.Push.Enabled && c.Push.ServerKey == "" {
		return fmt.Errorf("push.server_key is required when push is enabled")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
