package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Memgraph MemgraphConfig `mapstructure:"memgraph"`
	Display  DisplayConfig  `mapstructure:"display"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type MemgraphConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	URI              string  `mapstructure:"uri"`
	Username         string  `mapstructure:"username"`
	Password         string  `mapstructure:"password"`
	BatchSize        int     `mapstructure:"batch_size"`
	BatchesPerSecond float64 `mapstructure:"batches_per_second"`
}

type DisplayConfig struct {
	Graph bool `mapstructure:"graph"`
}

type MetricsConfig struct {
	// Textfile is where batch metrics are written after a run. Empty disables.
	Textfile string `mapstructure:"textfile"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

// Load reads the configuration from file and environment variables.
// A missing file is only an error when cfgFile names it explicitly.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".roadplan"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("roadplan")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("ROADPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("storage.path", "./data/roadplan.db")
	v.SetDefault("memgraph.enabled", false)
	v.SetDefault("memgraph.uri", "bolt://localhost:7687")
	v.SetDefault("memgraph.username", "")
	v.SetDefault("memgraph.password", "")
	v.SetDefault("memgraph.batch_size", 500)
	v.SetDefault("memgraph.batches_per_second", 0)
	v.SetDefault("display.graph", true)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("log.file", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Memgraph.Password = os.ExpandEnv(cfg.Memgraph.Password)
	return &cfg, nil
}
