package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory when
// no explicit path is given.
const DefaultFileName = "sql-guard.yaml"

// Accepts YYYY_MM_DD_HHMMSS, YYYY-MM-DD-HHMMSS, or YYYYMMDDHHMMSS; separators
// must not be mixed.
var timestampPattern = regexp.MustCompile(`^(\d{4}_\d{2}_\d{2}_\d{6}|\d{4}-\d{2}-\d{2}-\d{6}|\d{14})$`)

// Config controls which migrations and which checks run.
type Config struct {
	// StartAfter skips migration directories whose timestamp prefix is not
	// strictly after this threshold.
	StartAfter string `yaml:"start_after"`
	// CheckDown enables checking down.sql files in addition to up.sql.
	CheckDown bool `yaml:"check_down"`
	// DisableChecks lists rule names to skip.
	DisableChecks []string `yaml:"disable_checks"`
}

// Load reads the configuration from path. An empty path means the default
// file name in the working directory, and a missing default file yields the
// zero config rather than an error; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.StartAfter != "" && !timestampPattern.MatchString(cfg.StartAfter) {
		return nil, fmt.Errorf(
			"invalid start_after timestamp %q in %s: expected YYYYMMDDHHMMSS, YYYY_MM_DD_HHMMSS, or YYYY-MM-DD-HHMMSS",
			cfg.StartAfter, path)
	}

	return &cfg, nil
}

// ValidateCheckNames verifies every disabled check against the list of
// registered rule names.
func (c *Config) ValidateCheckNames(valid []string) error {
	known := make(map[string]struct{}, len(valid))
	for _, name := range valid {
		known[name] = struct{}{}
	}
	for _, name := range c.DisableChecks {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("invalid check name %q in disable_checks; valid names: %s",
				name, strings.Join(valid, ", "))
		}
	}
	return nil
}

// IsCheckEnabled reports whether the named check should run.
func (c *Config) IsCheckEnabled(name string) bool {
	for _, disabled := range c.DisableChecks {
		if disabled == name {
			return false
		}
	}
	return true
}

// ShouldCheckMigration reports whether a migration directory passes the
// start_after filter. The comparison normalizes both timestamps to their
// digits, so directories and config may use different separator styles.
// Directories without a full 14-digit timestamp prefix are always checked.
func (c *Config) ShouldCheckMigration(dirName string) bool {
	if c.StartAfter == "" {
		return true
	}

	threshold := normalizeTimestamp(c.StartAfter)
	candidate := normalizeTimestamp(dirName)
	if len(candidate) < 14 {
		return true
	}

	// Lexicographic comparison is correct for fixed-width digit strings.
	return candidate[:14] > threshold
}

func normalizeTimestamp(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DefaultYAML is the commented configuration written by `sql-guard init`.
const DefaultYAML = `# sql-guard configuration

# Skip migrations at or before this timestamp.
# Formats: YYYYMMDDHHMMSS, YYYY_MM_DD_HHMMSS, or YYYY-MM-DD-HHMMSS
# start_after: "2024_01_01_000000"

# Also check down.sql files.
check_down: false

# Rule names to disable.
disable_checks: []
`

// WriteDefault writes the default config to path, refusing to overwrite an
// existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; remove it first to regenerate", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(DefaultYAML), 0o644)
}
