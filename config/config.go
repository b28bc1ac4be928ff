package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cryptosim/fees"
)

// Config is the complete simulator configuration.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	History HistoryConfig `json:"history" yaml:"history"`
	Fees    fees.Schedule `json:"fees" yaml:"fees"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

type AccountConfig struct {
	Balance   float64  `json:"balance" yaml:"balance"`
	Exchange  string   `json:"exchange" yaml:"exchange"`
	Favorites []string `json:"favorites,omitempty" yaml:"favorites,omitempty"`
}

type HistoryConfig struct {
	// Retention is how many history records are kept. Accepts a number or
	// the string "unlimited".
	Retention Retention `json:"retention" yaml:"retention"`
}

// Retention is a record cap; 0 means unlimited.
type Retention int

func (r *Retention) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		if n < 0 {
			return fmt.Errorf("history.retention must not be negative")
		}
		*r = Retention(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("history.retention must be a number or \"unlimited\"")
	}
	return r.fromString(s)
}

func (r *Retention) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 {
			return fmt.Errorf("history.retention must not be negative")
		}
		*r = Retention(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("history.retention must be a number or \"unlimited\"")
	}
	return r.fromString(s)
}

func (r *Retention) fromString(s string) error {
	if strings.EqualFold(strings.TrimSpace(s), "unlimited") {
		*r = 0
		return nil
	}
	return fmt.Errorf("history.retention must be a number or \"unlimited\", got %q", s)
}

type FeedConfig struct {
	// Mode selects the price oracle adapter: poll, ws, script or replay.
	Mode     string      `json:"mode" yaml:"mode"`
	Symbol   string      `json:"symbol" yaml:"symbol"`
	Endpoint string      `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Interval string      `json:"interval,omitempty" yaml:"interval,omitempty"`
	File     string      `json:"file,omitempty" yaml:"file,omitempty"`
	Steps    []PriceStep `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// PriceStep is one scripted price move for feed mode "script".
type PriceStep struct {
	Price float64 `json:"price" yaml:"price"`
	Delay string  `json:"delay,omitempty" yaml:"delay,omitempty"` // e.g. "3s", "500ms"
}

func (ps PriceStep) ParseDelay() (time.Duration, error) {
	if ps.Delay == "" {
		return 0, nil
	}
	return time.ParseDuration(ps.Delay)
}

func (fc FeedConfig) ParseInterval() (time.Duration, error) {
	if fc.Interval == "" {
		return 3 * time.Second, nil
	}
	return time.ParseDuration(fc.Interval)
}

type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	ClosesFile string `json:"closes_file,omitempty" yaml:"closes_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type StoreConfig struct {
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Debounce string `json:"debounce,omitempty" yaml:"debounce,omitempty"`
}

func (sc StoreConfig) ParseDebounce() (time.Duration, error) {
	if sc.Debounce == "" {
		return 2 * time.Second, nil
	}
	return time.ParseDuration(sc.Debounce)
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile loads configuration, trying YAML first and falling back to
// JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", yerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, YAML for .yaml/.yml paths and
// indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration before a run starts.
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Account.Exchange == "" {
		return fmt.Errorf("account.exchange is required")
	}

	switch c.Feed.Mode {
	case "poll", "ws":
		if c.Feed.Endpoint == "" {
			return fmt.Errorf("feed.endpoint required for mode %q", c.Feed.Mode)
		}
		if c.Feed.Symbol == "" {
			return fmt.Errorf("feed.symbol is required")
		}
	case "script":
		if len(c.Feed.Steps) == 0 {
			return fmt.Errorf("feed.steps required for script mode")
		}
		if c.Feed.Symbol == "" {
			return fmt.Errorf("feed.symbol is required")
		}
		for i, s := range c.Feed.Steps {
			if s.Price <= 0 {
				return fmt.Errorf("feed.steps[%d].price must be positive", i)
			}
			if _, err := s.ParseDelay(); err != nil {
				return fmt.Errorf("feed.steps[%d].delay: %w", i, err)
			}
		}
	case "replay":
		if c.Feed.File == "" {
			return fmt.Errorf("feed.file required for replay mode")
		}
		if c.Feed.Symbol == "" {
			return fmt.Errorf("feed.symbol is required")
		}
	default:
		return fmt.Errorf("feed.mode must be poll, ws, script or replay")
	}
	if _, err := c.Feed.ParseInterval(); err != nil {
		return fmt.Errorf("feed.interval: %w", err)
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.ClosesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal fills_file, closes_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be csv, sqlite or none")
	}

	if _, err := c.Store.ParseDebounce(); err != nil {
		return fmt.Errorf("store.debounce: %w", err)
	}
	return nil
}

// Default returns a runnable configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Balance:   100_000,
			Exchange:  "binance",
			Favorites: []string{"BTCUSDT", "ETHUSDT"},
		},
		History: HistoryConfig{Retention: 100},
		Fees:    fees.Default(),
		Feed: FeedConfig{
			Mode:     "poll",
			Symbol:   "BTCUSDT",
			Endpoint: "https://api.binance.com/api/v3/ticker/price",
			Interval: "3s",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./cryptosim.db",
		},
		Store: StoreConfig{
			Path:     "./state.json",
			Debounce: "2s",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
