// Package config loads the CLI configuration from a config file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	defaultServerAddr = "http://localhost:8080"
	envPrefix         = "LEGACYVAULT"
)

// Config holds everything the CLI needs to reach the server and keep its
// local state.
type Config struct {
	ServerAddr  string
	Dir         string
	SessionFile string
}

// Load reads config.yaml from dir, falling back to ~/.legacyvault when dir
// is empty. Environment variables with the LEGACYVAULT_ prefix override
// file values; a missing config file is fine.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home dir: %w", err)
		}
		dir = filepath.Join(home, ".legacyvault")
	}

	v := viper.New()
	v.SetDefault("server_addr", defaultServerAddr)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return &Config{
		ServerAddr:  v.GetString("server_addr"),
		Dir:         dir,
		SessionFile: filepath.Join(dir, "session.json"),
	}, nil
}
