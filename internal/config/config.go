// Package config loads runtime settings for the strided command line.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Runtime RuntimeConfig `mapstructure:"runtime"`
	Output  OutputConfig  `mapstructure:"output"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type RuntimeConfig struct {
	// Workers is the number of goroutines batched matmul fans out to; <= 1 is sequential.
	Workers int `mapstructure:"workers"`
}

type OutputConfig struct {
	// Precision is the number of digits after the decimal point; -1 prints the shortest exact form.
	Precision int `mapstructure:"precision"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		Runtime: RuntimeConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Precision: -1,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.Log.Level, "Log level (debug|info|warn|error)")
	fs.Int("workers", defaults.Runtime.Workers, "Goroutines used for batched matmul (<= 1 runs sequentially)")
	fs.Int("precision", defaults.Output.Precision, "Digits after the decimal point when printing (-1 for shortest)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("STRIDED")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("strided")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
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

// Validate rejects settings the engine cannot honor.
func (c Config) Validate() error {
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Runtime.Workers < 0 {
		return fmt.Errorf("runtime.workers must be >= 0, got %d", c.Runtime.Workers)
	}
	if c.Output.Precision < -1 {
		return fmt.Errorf("output.precision must be >= -1, got %d", c.Output.Precision)
	}
	return nil
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("runtime.workers", c.Runtime.Workers)
	v.SetDefault("output.precision", c.Output.Precision)
}

// flagKeys maps config keys to the flag names RegisterFlags defines.
var flagKeys = map[string]string{
	"log.level":        "log-level",
	"runtime.workers":  "workers",
	"output.precision": "precision",
}

// bindFlags binds each registered flag to its nested key so that config files
// and environment variables address the same setting.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}
