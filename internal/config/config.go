// Package config loads pingtray settings from compiled-in defaults and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/HerbHall/pingtray/internal/icon"
	"github.com/HerbHall/pingtray/internal/monitor"
	"github.com/HerbHall/pingtray/internal/severity"
	"github.com/spf13/viper"
)

const (
	appDir   = "pingtray"
	fileName = "pingtray.yaml"
)

// Config is the decoded, validated configuration.
type Config struct {
	Probe      ProbeConfig         `mapstructure:"probe"`
	Thresholds severity.Thresholds `mapstructure:"thresholds"`
	Icon       icon.Options        `mapstructure:"icon"`
	Metrics    MetricsConfig       `mapstructure:"metrics"`
}

// ProbeConfig controls what is probed and how often.
type ProbeConfig struct {
	Host       string        `mapstructure:"host"`
	Interval   time.Duration `mapstructure:"interval"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Privileged bool          `mapstructure:"privileged"`
}

// MetricsConfig controls the optional Prometheus listener. An empty Listen
// disables it.
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// Monitor returns the tick loop parameters.
func (c Config) Monitor() monitor.Config {
	return monitor.Config{
		Host:       c.Probe.Host,
		Interval:   c.Probe.Interval,
		Thresholds: c.Thresholds,
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Monitor().Validate(); err != nil {
		return err
	}
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout %s must be positive", c.Probe.Timeout)
	}
	if c.Icon.Size < 16 {
		return fmt.Errorf("icon.size %d must be at least 16", c.Icon.Size)
	}
	if c.Icon.FontSize <= 0 {
		return fmt.Errorf("icon.font_size %v must be positive", c.Icon.FontSize)
	}
	return nil
}

// DefaultPath returns the config file location in the user config directory,
// or "" when that directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDir, fileName)
}

// Load returns a Viper instance holding the defaults overlaid with the file at
// configPath. A missing file is not an error. Environment variables are not
// consulted.
func Load(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		return v, nil
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			// Config file not found is fine -- use defaults
			return v, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	th := severity.DefaultThresholds()

	v.SetDefault("probe.host", "google.com")
	v.SetDefault("probe.interval", 1500*time.Millisecond)
	v.SetDefault("probe.timeout", time.Second)
	v.SetDefault("probe.privileged", false)
	v.SetDefault("thresholds.good_ms", th.Good)
	v.SetDefault("thresholds.warning_ms", th.Warning)
	v.SetDefault("icon.size", icon.DefaultSize)
	v.SetDefault("icon.font_size", icon.DefaultFontSize)
	v.SetDefault("icon.font_path", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("metrics.listen", "")
}

// Decode unmarshals and validates the configuration held by v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
