// Package config loads the harness settings from JJTEST_* environment
// variables and an optional jjtest.toml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variables read by Load.
const EnvPrefix = "JJTEST"

// DefaultBinary is the tool looked up on PATH when no binary is configured.
const DefaultBinary = "jj"

// Settings holds the harness configuration.
// Precedence: JJTEST_* env vars > jjtest.toml > defaults.
type Settings struct {
	Binary         string `mapstructure:"binary"           toml:"binary"`
	Debug          bool   `mapstructure:"debug"            toml:"debug"`
	DebugFile      string `mapstructure:"debug_file"       toml:"debug_file"`
	FakeDiffEditor string `mapstructure:"fake_diff_editor" toml:"fake_diff_editor"`
	FakeEditor     string `mapstructure:"fake_editor"      toml:"fake_editor"`
	KeepSandbox    bool   `mapstructure:"keep_sandbox"     toml:"keep_sandbox"`
	MaxLogFiles    int    `mapstructure:"max_log_files"    toml:"max_log_files"`
}

// DefaultConfigDir returns JJTEST_CONFIG_DIR, or the current directory.
// Under go test that is the directory of the package being tested.
func DefaultConfigDir() string {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return ExpandPath(dir)
	}
	return "."
}

// Load reads configDir/jjtest.toml and the environment and returns the
// merged settings. A missing file is not an error.
func Load(configDir string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("jjtest")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("binary", DefaultBinary)
	v.SetDefault("debug", false)
	v.SetDefault("debug_file", "")
	v.SetDefault("fake_diff_editor", "")
	v.SetDefault("fake_editor", "")
	v.SetDefault("keep_sandbox", false)
	v.SetDefault("max_log_files", 100)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	settings.Binary = ExpandPath(settings.Binary)
	settings.DebugFile = ExpandPath(settings.DebugFile)
	settings.FakeDiffEditor = ExpandPath(settings.FakeDiffEditor)
	settings.FakeEditor = ExpandPath(settings.FakeEditor)

	return settings, nil
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
