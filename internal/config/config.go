// Package config loads the application config file with viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	keyDataFolder = "data_folder"
	keyLogLevel   = "log_level"
	keyLogFile    = "log_file"
)

// Config holds values read from <config dir>/<app>/<app>.yml.
type Config struct {
	Path       string
	DataFolder string
	LogLevel   string
	LogFile    string
}

// Load reads the app config from the user config directory.
func Load(appName string) (Config, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve config directory: %w", err)
	}
	return LoadFrom(filepath.Join(configHome, appName), appName)
}

// LoadFrom reads <dir>/<name>.yml, creating it with defaults on first run.
func LoadFrom(dir, name string) (Config, error) {
	path := filepath.Join(dir, name+".yml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Config{}, fmt.Errorf("create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(keyDataFolder, filepath.Join(dir, "data"))
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFile, "")
	v.SetEnvPrefix(strings.ToUpper(name))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := v.WriteConfigAs(path); err != nil {
			return Config{}, fmt.Errorf("create config file: %w", err)
		}
	}

	config := Config{
		Path:       path,
		DataFolder: v.GetString(keyDataFolder),
		LogLevel:   strings.ToLower(v.GetString(keyLogLevel)),
		LogFile:    v.GetString(keyLogFile),
	}
	if config.DataFolder == "" {
		config.DataFolder = filepath.Join(dir, "data")
	}
	if err := os.MkdirAll(config.DataFolder, 0o755); err != nil {
		return Config{}, fmt.Errorf("create data folder: %w", err)
	}
	return config, nil
}
