// Package config loads and validates the bot configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration.
type Config struct {
	Symbol          string  `json:"symbol" yaml:"symbol"`
	IntervalSeconds int     `json:"interval_seconds" yaml:"interval_seconds"`
	PollSeconds     int     `json:"poll_seconds" yaml:"poll_seconds"`
	Quantity        float64 `json:"quantity" yaml:"quantity"`
	StartingCash    float64 `json:"starting_cash" yaml:"starting_cash"`
	Slippage        float64 `json:"slippage" yaml:"slippage"`
	RewardRatio     float64 `json:"reward_ratio" yaml:"reward_ratio"`
	EMAPeriod       int     `json:"ema_period" yaml:"ema_period"`

	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// FeedConfig selects and tunes the price source.
type FeedConfig struct {
	Type       string  `json:"type" yaml:"type"` // "random"
	StartPrice float64 `json:"start_price,omitempty" yaml:"start_price,omitempty"`
	Volatility float64 `json:"volatility,omitempty" yaml:"volatility,omitempty"`
	Seed       int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// JournalConfig selects the trade journal backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Interval is the candle interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Poll is the feed polling cadence.
func (c *Config) Poll() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration as YAML (.yaml/.yml) or JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval_seconds must be positive")
	}
	if c.PollSeconds <= 0 {
		return fmt.Errorf("poll_seconds must be positive")
	}
	if c.PollSeconds > c.IntervalSeconds {
		return fmt.Errorf("poll_seconds must not exceed interval_seconds")
	}
	if c.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if c.StartingCash <= 0 {
		return fmt.Errorf("starting_cash must be positive")
	}
	if c.Slippage < 0 || c.Slippage >= 1 {
		return fmt.Errorf("slippage must be in [0, 1)")
	}
	if c.RewardRatio <= 0 {
		return fmt.Errorf("reward_ratio must be positive")
	}
	if c.EMAPeriod <= 0 {
		return fmt.Errorf("ema_period must be positive")
	}
	if c.Feed.Type != "random" {
		return fmt.Errorf("feed.type must be 'random'")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Symbol:          "NIFTY",
		IntervalSeconds: 300,
		PollSeconds:     5,
		Quantity:        50,
		StartingCash:    100_000,
		Slippage:        0,
		RewardRatio:     3.0,
		EMAPeriod:       5,
		Feed: FeedConfig{
			Type:       "random",
			StartPrice: 100,
			Volatility: 0.2,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
