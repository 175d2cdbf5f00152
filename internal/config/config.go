package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/proclife/internal/logger"
)

// Config is the daemon configuration, loaded from TOML.
type Config struct {
	// Interval between monitoring passes.
	Interval time.Duration `toml:"interval" mapstructure:"interval"`
	// MaxProcesses bounds the tracked process set.
	MaxProcesses int `toml:"max_processes" mapstructure:"max_processes"`
	// LowMemoryPct: available-memory percentage defining memory pressure.
	LowMemoryPct float64 `toml:"low_memory_pct" mapstructure:"low_memory_pct"`
	// EvictIdle: minimum idle time before a cached process may be evicted.
	EvictIdle time.Duration `toml:"evict_idle" mapstructure:"evict_idle"`
	// CgroupRoot is the cgroup v2 mount point.
	CgroupRoot string `toml:"cgroup_root" mapstructure:"cgroup_root"`
	// ProcRoot is the proc pseudo-filesystem mount point.
	ProcRoot string `toml:"proc_root" mapstructure:"proc_root"`
	// ServiceNames overrides the system-service allow-list.
	ServiceNames []string `toml:"service_names" mapstructure:"service_names"`
	// Listen is the HTTP API address; empty disables the server.
	Listen string `toml:"listen" mapstructure:"listen"`
	// StorePath is the SQLite event history location; empty disables it.
	StorePath string `toml:"store_path" mapstructure:"store_path"`

	Log logger.Config `toml:"log" mapstructure:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Interval:     2 * time.Second,
		MaxProcesses: 128,
		LowMemoryPct: 15,
		EvictIdle:    300 * time.Second,
		CgroupRoot:   "/sys/fs/cgroup",
		ProcRoot:     "/proc",
	}
}

// Load reads a TOML config file and overlays it on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the monitor cannot run with.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.MaxProcesses <= 0 {
		return fmt.Errorf("max_processes must be positive, got %d", c.MaxProcesses)
	}
	if c.LowMemoryPct <= 0 || c.LowMemoryPct >= 100 {
		return fmt.Errorf("low_memory_pct must be in (0,100), got %v", c.LowMemoryPct)
	}
	if c.EvictIdle <= 0 {
		return fmt.Errorf("evict_idle must be positive, got %s", c.EvictIdle)
	}
	return nil
}
