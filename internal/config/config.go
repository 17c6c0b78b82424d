// Package config loads the command line front end's settings.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config stores runtime settings. Values come from shpattr.yaml, from
// environment variables prefixed SHPATTR_, or from defaults.
type Config struct {
	// WorkingDir is used to resolve relative input paths.
	WorkingDir string `mapstructure:"working_dir"`
	// Verbose enables extra run commentary.
	Verbose bool `mapstructure:"verbose"`
	// LogFile, when set, duplicates the diagnostic log into a file.
	LogFile  string         `mapstructure:"log_file"`
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig stores Oracle connection details for the export command.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	Service        string `mapstructure:"service"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	WalletLocation string `mapstructure:"wallet_location"`
}

// Load reads configuration from configPath if given, otherwise from a
// shpattr.yaml in the current directory. A missing config file is not an
// error; defaults and environment variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("shpattr")
		v.SetConfigType("yaml")
	}

	v.SetDefault("working_dir", ".")
	v.SetDefault("verbose", false)
	v.SetDefault("log_file", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "1521")
	v.SetDefault("database.service", "XE")

	v.SetEnvPrefix("SHPATTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if configPath != "" {
			return nil, fmt.Errorf("read configuration %s: %w", configPath, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read configuration: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return &cfg, nil
}
