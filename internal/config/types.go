// Package config loads autokey settings from defaults, an autokey.yaml file,
// AUTOKEY_* environment variables and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // timezone names work without a system zoneinfo
)

// Config holds all autokey configuration options.
type Config struct {
	PhraseDB      string        `koanf:"phrase_db"`
	MacrosDir     string        `koanf:"macros_dir"`
	ScriptDirs    []string      `koanf:"script_dirs"`
	ScriptTimeout time.Duration `koanf:"script_timeout"`
	Shell         string        `koanf:"shell"`
	Timezone      string        `koanf:"timezone"`
	LogLevel      string        `koanf:"log_level"`
	Verbose       bool          `koanf:"verbose"`
	OutputFormat  string        `koanf:"output"`
}

// Configuration file names, searched in order.
const (
	ConfigFileName    = "autokey.yaml"
	ConfigFileNameAlt = "autokey.yml"
)

// Default configuration values.
const (
	DefaultScriptTimeout = 10 * time.Second
	DefaultShell         = "/bin/sh"
	DefaultLogLevel      = "warn"
	DefaultOutput        = "auto" // text on a terminal, plain otherwise
)

// Output formats accepted by the output option.
var OutputFormats = []string{"auto", "text", "json", "yaml"}

// LogLevels accepted by the log_level option.
var LogLevels = []string{"debug", "info", "warn", "error"}

// DataDir returns the per-user autokey directory holding the phrase database,
// macros and scripts.
func DataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".autokey"
	}
	return filepath.Join(dir, "autokey")
}

// Defaults returns the default value of every key.
func Defaults() map[string]any {
	dir := DataDir()
	return map[string]any{
		"phrase_db":      filepath.Join(dir, "phrases.db"),
		"macros_dir":     filepath.Join(dir, "macros"),
		"script_dirs":    []string{filepath.Join(dir, "scripts")},
		"script_timeout": DefaultScriptTimeout,
		"shell":          DefaultShell,
		"timezone":       "",
		"log_level":      DefaultLogLevel,
		"verbose":        false,
		"output":         DefaultOutput,
	}
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	dir := DataDir()
	return &Config{
		PhraseDB:      filepath.Join(dir, "phrases.db"),
		MacrosDir:     filepath.Join(dir, "macros"),
		ScriptDirs:    []string{filepath.Join(dir, "scripts")},
		ScriptTimeout: DefaultScriptTimeout,
		Shell:         DefaultShell,
		LogLevel:      DefaultLogLevel,
		OutputFormat:  DefaultOutput,
	}
}

// Location returns the configured time zone, or time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
