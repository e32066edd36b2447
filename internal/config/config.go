package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"canchero/internal/slots"
	"canchero/internal/timezone"
)

type Config struct {
	Server struct {
		Port    int      `yaml:"port"`
		APIKeys []string `yaml:"api_keys"`
		// Requests per second allowed per client, with Burst headroom.
		RateLimit float64 `yaml:"rate_limit"`
		Burst     int     `yaml:"burst"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address    string `yaml:"address"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		Path          string `yaml:"path"`
		IntervalHours int    `yaml:"interval_hours"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Booking struct {
		Timezone    string `yaml:"timezone"`
		OpenHour    int    `yaml:"open_hour"`
		CloseHour   int    `yaml:"close_hour"`
		SlotMinutes int    `yaml:"slot_minutes"`
	} `yaml:"booking"`

	Courts []CourtSeed `yaml:"courts"`
}

// CourtSeed declares a court to ensure exists at startup.
type CourtSeed struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/canchero.db"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ServerPort() int {
	if c.Server.Port <= 0 {
		return 8080
	}
	return c.Server.Port
}

func (c *Config) BackupPath() string {
	if c.Backup.Path == "" {
		return "data/backups"
	}
	return c.Backup.Path
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) BackupRetention() time.Duration {
	if c.Backup.RetentionDays <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.Backup.RetentionDays) * 24 * time.Hour
}

func (c *Config) BookingTimezone() string {
	if c.Booking.Timezone == "" {
		return timezone.DefaultZone
	}
	return c.Booking.Timezone
}

// SlotOptions returns the slot grid configuration with defaults applied.
func (c *Config) SlotOptions() slots.Options {
	opts := slots.Options{
		OpenHour:    c.Booking.OpenHour,
		CloseHour:   c.Booking.CloseHour,
		SlotMinutes: c.Booking.SlotMinutes,
	}
	if opts.OpenHour <= 0 {
		opts.OpenHour = slots.DefaultOpenHour
	}
	if opts.CloseHour <= 0 {
		opts.CloseHour = slots.DefaultCloseHour
	}
	if opts.SlotMinutes <= 0 {
		opts.SlotMinutes = slots.DefaultSlotMinutes
	}
	return opts
}
