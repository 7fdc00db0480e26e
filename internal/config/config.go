package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Portfolio struct {
		Path   string `yaml:"path"`
		APIKey string `yaml:"api_key"`
	} `yaml:"portfolio"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Schedule struct {
		NavCron      string `yaml:"nav_cron"`
		SimulateCron string `yaml:"simulate_cron"`
		ReloadCron   string `yaml:"reload_cron"`
	} `yaml:"schedule"`
	Simulation struct {
		Seed     int64              `yaml:"seed"`
		Defaults SimulationDefaults `yaml:"defaults"`
	} `yaml:"simulation"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Metrics struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// SimulationDefaults override the economics used when a project omits a
// field. Pointers distinguish an explicit zero from an absent key.
type SimulationDefaults struct {
	DegradationRate *float64 `yaml:"degradation_rate"`
	TaxRate         *float64 `yaml:"tax_rate"`
	PPAPricePerKWh  *float64 `yaml:"ppa_price_per_kwh"`
	PPAPricePerMWh  *float64 `yaml:"ppa_price_per_mwh"`
	AnnualCycles    *float64 `yaml:"annual_cycles"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORTFOLIO_PATH"); v != "" {
		cfg.Portfolio.Path = v
	}
	if v := os.Getenv("PORTFOLIO_API_KEY"); v != "" {
		cfg.Portfolio.APIKey = v
	}
	if v := os.Getenv("ORACLE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SIMULATION_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Simulation.Seed = seed
		}
	}
	if v := os.Getenv("CRON_NAV"); v != "" {
		cfg.Schedule.NavCron = v
	}
	if v := os.Getenv("CRON_SIMULATE"); v != "" {
		cfg.Schedule.SimulateCron = v
	}
	if v := os.Getenv("CRON_RELOAD"); v != "" {
		cfg.Schedule.ReloadCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	// Defaults
	if cfg.Portfolio.Path == "" {
		cfg.Portfolio.Path = "data/projects.json"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5001"
	}
	if cfg.Schedule.NavCron == "" {
		cfg.Schedule.NavCron = "0 0 * * * *"
	}
	if cfg.Schedule.SimulateCron == "" {
		cfg.Schedule.SimulateCron = "0 0 9 1 * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Metrics.Enabled == nil {
		enabled := true
		cfg.Metrics.Enabled = &enabled
	}
	d := &cfg.Simulation.Defaults
	setDefault(&d.DegradationRate, 0.005)
	setDefault(&d.TaxRate, 0.21)
	setDefault(&d.PPAPricePerKWh, 0.06)
	setDefault(&d.PPAPricePerMWh, 85)
	setDefault(&d.AnnualCycles, 365)

	return cfg, nil
}

func setDefault(p **float64, v float64) {
	if *p == nil {
		*p = &v
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Portfolio.Path == "" {
		return fmt.Errorf("portfolio.path is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	d := c.Simulation.Defaults
	for name, rate := range map[string]*float64{
		"degradation_rate": d.DegradationRate,
		"tax_rate":         d.TaxRate,
	} {
		if rate == nil || *rate < 0 || *rate >= 1 {
			return fmt.Errorf("simulation.defaults.%s must be in [0, 1)", name)
		}
	}
	for name, v := range map[string]*float64{
		"ppa_price_per_kwh": d.PPAPricePerKWh,
		"ppa_price_per_mwh": d.PPAPricePerMWh,
		"annual_cycles":     d.AnnualCycles,
	} {
		if v == nil || *v <= 0 {
			return fmt.Errorf("simulation.defaults.%s must be positive", name)
		}
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// MetricsEnabled reports whether /metrics should be served.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled != nil && *c.Metrics.Enabled
}
