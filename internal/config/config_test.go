package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadAndValidate(t *testing.T) {
	content := `
pandascore:
  token: "test-token"
  poll_interval: 1m

engine:
  reminder_window: 15m
  min_prize_pool: 100000

push:
  enabled: true
  server_key: "test-key"

telegram:
  bot_token: "test_token"
  chat_id: "test_chat_id"
  enabled: true

storage:
  db_path: "./data/test.db"

aliases:
  natus vincere:
    - navi
    - na'vi

logging:
  level: "info"
  format: "json"
`
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove(tmpfile.Name()) }()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.PandaScore.Token != "test-token" {
		t.Errorf("Unexpected token: %q", cfg.PandaScore.Token)
	}
	if cfg.PandaScore.PollInterval != time.Minute {
		t.Errorf("Unexpected poll interval: %v", cfg.PandaScore.PollInterval)
	}
	// Defaults fill what the file omits.
	if cfg.PandaScore.BaseURL != "https://api.pandascore.co" {
		t.Errorf("Unexpected base URL: %q", cfg.PandaScore.BaseURL)
	}
	if cfg.Engine.MatchTTL != 168*time.Hour {
		t.Errorf("Unexpected match TTL: %v", cfg.Engine.MatchTTL)
	}
	if got := cfg.Aliases["natus vincere"]; len(got) != 2 {
		t.Errorf("Expected 2 aliases, got %v", got)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func validConfig() *Config {
	return &Config{
		PandaScore: PandaScoreConfig{
			BaseURL:      "https://api.pandascore.co",
			Token:        "test-token",
			PollInterval: time.Minute,
			PerPage:      50,
			MaxPages:     3,
		},
		Engine: EngineConfig{
			ReminderWindow: 15 * time.Minute,
			MatchTTL:       168 * time.Hour,
		},
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing token", mutate: func(c *Config) { c.PandaScore.Token = "" }, wantErr: true},
		{name: "poll interval too short", mutate: func(c *Config) { c.PandaScore.PollInterval = time.Second }, wantErr: true},
		{name: "per_page out of range", mutate: func(c *Config) { c.PandaScore.PerPage = 500 }, wantErr: true},
		{name: "reminder window too short", mutate: func(c *Config) { c.Engine.ReminderWindow = time.Second }, wantErr: true},
		{name: "push enabled without key", mutate: func(c *Config) { c.Push.Enabled = true }, wantErr: true},
		{name: "telegram enabled without token", mutate: func(c *Config) { c.Telegram.Enabled = true; c.Telegram.ChatID = "1" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: true},
		{name: "missing server addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
