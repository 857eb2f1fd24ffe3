// Package config loads dtengine settings from defaults, a YAML config
// file, DTENGINE_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/dtengine/internal/coerce"
	"github.com/roach88/dtengine/internal/dtype"
)

// EnvPrefix prefixes environment overrides, e.g. DTENGINE_DB.
const EnvPrefix = "DTENGINE"

// LocalConfigPath is checked before the user config directory.
const LocalConfigPath = ".dtengine/config.yaml"

// Config holds all configuration options for dtengine.
type Config struct {
	// DB is the report store path. Empty disables persistence.
	DB string `mapstructure:"db"`

	// Format is the default output format, "text" or "json".
	Format string `mapstructure:"format"`

	// Aliases registers extra string aliases per canonical descriptor.
	// Keys pass through viper and are lower-cased; use AliasFiles for
	// case-sensitive descriptors such as category labels.
	Aliases map[string][]string `mapstructure:"aliases"`

	// AliasFiles are YAML alias packs loaded after Aliases.
	AliasFiles []string `mapstructure:"alias_files"`

	Parallel ParallelConfig `mapstructure:"parallel"`
}

// ParallelConfig tunes per-element failure diagnosis.
type ParallelConfig struct {
	Workers   int `mapstructure:"workers"`
	Threshold int `mapstructure:"threshold"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Format: "text",
		Parallel: ParallelConfig{
			Workers:   runtime.GOMAXPROCS(0),
			Threshold: coerce.DefaultParallelThreshold,
		},
	}
}

// Load reads configuration. path names an explicit config file and must
// exist; when empty, LocalConfigPath and then
// ~/.config/dtengine/config.yaml are tried and a missing file is not an
// error. Changed flags in flags named db or format override every other
// source.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("db", defaults.DB)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("parallel.workers", defaults.Parallel.Workers)
	v.SetDefault("parallel.threshold", defaults.Parallel.Threshold)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, name := range []string{"db", "format"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(name, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else if _, err := os.Stat(LocalConfigPath); err == nil {
		v.SetConfigFile(LocalConfigPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "dtengine"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be one of [text json]", c.Format)
	}
	if c.Parallel.Workers < 0 {
		return fmt.Errorf("parallel.workers must not be negative, got %d", c.Parallel.Workers)
	}
	if c.Parallel.Threshold < 0 {
		return fmt.Errorf("parallel.threshold must not be negative, got %d", c.Parallel.Threshold)
	}
	return nil
}

// RegistryOptions returns the dtype options for the configured aliases:
// the inline aliases first, then each alias file in order.
func (c Config) RegistryOptions() ([]dtype.Option, error) {
	var opts []dtype.Option
	if len(c.Aliases) > 0 {
		opts = append(opts, dtype.WithAliases(dtype.AliasPack{Aliases: c.Aliases}))
	}
	for _, path := range c.AliasFiles {
		pack, err := loadAliasFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dtype.WithAliases(pack))
	}
	return opts, nil
}

// EngineOptions returns the coerce options for the parallel settings.
func (c Config) EngineOptions() []coerce.Option {
	return []coerce.Option{coerce.WithParallelism(c.Parallel.Workers, c.Parallel.Threshold)}
}

func loadAliasFile(path string) (dtype.AliasPack, error) {
	f, err := os.Open(path)
	if err != nil {
		return dtype.AliasPack{}, fmt.Errorf("open alias file: %w", err)
	}
	defer f.Close()

	pack, err := dtype.LoadAliases(f)
	if err != nil {
		return dtype.AliasPack{}, fmt.Errorf("alias file %s: %w", path, err)
	}
	return pack, nil
}
