// Package config loads the tool configuration from file, environment
// variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".repolang"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for repolang settings.
const envPrefix = "REPOLANG"

// DefaultOutput is the workbook path used when none is configured.
const DefaultOutput = "project_languages.xlsx"

// DefaultWorkers keeps repository processing strictly sequential.
const DefaultWorkers = 1

// Config holds everything a run needs besides credentials, which come
// only from the process environment and are never part of this struct.
type Config struct {
	// Projects are the hosting-service project keys to catalog.
	Projects []string `mapstructure:"projects"`
	// Output is the path of the xlsx report.
	Output string `mapstructure:"output"`
	// Workdir is the scratch area for working copies.
	Workdir string `mapstructure:"workdir"`
	// Workers bounds concurrent repository processing.
	Workers int `mapstructure:"workers"`
	// Remote uses the hosting service's language stats instead of cloning.
	Remote bool `mapstructure:"remote"`
}

// Validate checks the configuration after flag overrides are applied.
func (c *Config) Validate() error {
	if len(c.Projects) == 0 {
		return errors.New("at least one project key is required")
	}
	if c.Output == "" {
		return errors.New("output path must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Load reads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("projects", []string{})
	viperCfg.SetDefault("output", DefaultOutput)
	viperCfg.SetDefault("workdir", filepath.Join(os.TempDir(), "repolang"))
	viperCfg.SetDefault("workers", DefaultWorkers)
	viperCfg.SetDefault("remote", false)
}
