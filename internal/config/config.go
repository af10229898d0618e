// Package config loads spkline settings from an optional YAML file and
// SPKLINE_* environment variables on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/pkg/analysis"
	"github.com/edp1096/spkline/pkg/quality"
)

const (
	EnvPrefix = "SPKLINE"
	fileName  = "spkline"
)

type Config struct {
	Calculation analysis.Settings          `mapstructure:"calculation"`
	Profiles    map[string]quality.Profile `mapstructure:"profiles"`
	Database    Database                   `mapstructure:"database"`
	Server      Server                     `mapstructure:"server"`
	Log         Log                        `mapstructure:"log"`
}

type Database struct {
	Path string `mapstructure:"path"` // sqlite device library; empty keeps the built-in database
}

type Server struct {
	Addr        string        `mapstructure:"addr"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
	LibraryTTL  time.Duration `mapstructure:"library_ttl"` // 0 reloads the library on every request
}

type Log struct {
	Mode  string `mapstructure:"mode"` // dev or prod
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calculation.ambient_temp_c", consts.DefaultAmbientC)
	v.SetDefault("calculation.quality_profile", quality.DefaultProfile)
	v.SetDefault("calculation.line_voltage", consts.DefaultLineVoltage)
	v.SetDefault("database.path", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.library_ttl", "30s")
	v.SetDefault("log.mode", "prod")
	v.SetDefault("log.level", "")
}

// DefaultPaths lists the directories searched for spkline.yaml.
func DefaultPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "spkline"))
	}
	return paths
}

// Load reads path when given, otherwise the first spkline.yaml found in
// DefaultPaths. A missing default file is not an error; a missing explicit
// file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		for _, p := range DefaultPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Calculation.LineVoltage <= 0 {
		errs = append(errs, fmt.Errorf("calculation.line_voltage must be positive, got %g", c.Calculation.LineVoltage))
	}
	switch c.Log.Mode {
	case "dev", "prod":
	default:
		errs = append(errs, fmt.Errorf("log.mode must be dev or prod, got %q", c.Log.Mode))
	}
	if _, err := c.ProfileSet(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ProfileSet returns the built-in quality profiles with the configured
// threshold overrides applied. Keys must name a built-in profile.
func (c *Config) ProfileSet() (*quality.Set, error) {
	set := quality.Builtin()

	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := set.Override(name, c.Profiles[name]); err != nil {
			return nil, fmt.Errorf("profiles.%s: %w", name, err)
		}
	}
	if _, err := set.Get(c.Calculation.QualityProfile); err != nil {
		return nil, fmt.Errorf("calculation.quality_profile: %w", err)
	}
	return set, nil
}
