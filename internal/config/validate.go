package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.PhraseDB == "" {
		return fmt.Errorf("phrase_db is required")
	}
	if c.Shell == "" {
		return fmt.Errorf("shell is required")
	}
	if c.ScriptTimeout < 0 {
		return fmt.Errorf("script_timeout must not be negative, got %s", c.ScriptTimeout)
	}
	if !slices.Contains(LogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("unknown log_level %q (want one of %s)", c.LogLevel, strings.Join(LogLevels, ", "))
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("unknown output %q (want one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}
