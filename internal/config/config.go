package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SimulationConfig controls artifact generation and continuation.
type SimulationConfig struct {
	// DataDir holds artifacts, the market data cache and scratch files.
	DataDir string `mapstructure:"data_dir"`
	// CutoffDate is the last date precomputed artifacts cover; continuation
	// picks up from here.
	CutoffDate string `mapstructure:"cutoff_date"`
	// Seed drives synthetic price generation and buy down-sampling.
	Seed int64 `mapstructure:"seed"`
	// UniverseSize bounds how many symbols artifact generation simulates.
	UniverseSize int `mapstructure:"universe_size"`
}

type CacheConfig struct {
	// TTL bounds how long a served response may lag reconstruction.
	TTL time.Duration `mapstructure:"ttl"`
}

// ArchiveConfig controls where generated artifacts are archived.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Simulation: SimulationConfig{
			DataDir:      "data",
			CutoffDate:   "2025-03-01",
			Seed:         42,
			UniverseSize: 50,
		},
		Cache: CacheConfig{
			TTL: 60 * time.Second,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Simulation.DataDir == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("simulation data_dir is required"))
	}
	if _, err := core.ParseDate(c.Simulation.CutoffDate); err != nil {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cutoff_date must be YYYY-MM-DD, got %q", c.Simulation.CutoffDate))
	}
	if c.Simulation.UniverseSize < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("universe_size cannot be negative, got %d", c.Simulation.UniverseSize))
	}

	if c.Cache.TTL < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cache ttl cannot be negative, got %s", c.Cache.TTL))
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required when type is localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required when type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type %q", c.Archive.Type))
		}
	}

	return nil
}
