// Package config loads gofileup settings from an optional config file
// and GOFILEUP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	Log      Log      `mapstructure:"log"`
}

// Database configures the local tracking store.
type Database struct {
	Path string `mapstructure:"path"`
}

// Log configures logging output.
type Log struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gofileup"
	}
	return filepath.Join(home, ".gofileup")
}

// Load reads configuration from cfgFile, or from ~/.gofileup/config.yaml
// when cfgFile is empty. A missing config file is fine; defaults and
// environment variables still apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	dir := defaultDir()
	v.SetDefault("database.path", filepath.Join(dir, "gofileup.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "stderr")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("GOFILEUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || os.IsNotExist(err)
		// An explicitly named file must exist; the default location is
		// optional.
		if cfgFile != "" || !missing {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
