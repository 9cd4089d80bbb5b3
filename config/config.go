package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brettbedarf/vshell/internal/util"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable read by [LoadEnvOverride]
const EnvPrefix = "VSHELL"

// CLI verbosity levels. Values outside the range are clamped.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl       = util.InfoLevel
	DefaultPrompt       = ">"
	DefaultCursorChar   = "_"
	DefaultCursorBlink  = 500 * time.Millisecond
	DefaultItemsPerRow  = 5
	DefaultScrollback   = 500
	DefaultUnrestricted = false
	DefaultJSON         = false
)

// Config contains runtime configuration values for a shell session.
type Config struct {
	LogLvl      util.LogLevel
	Prompt      string        // Input prompt (Default ">")
	CursorChar  string        // Character drawn for the input cursor (Default "_")
	CursorBlink time.Duration // Cursor blink interval; 0 disables blinking (Default 500ms)
	Scrollback  int           // Console lines kept in interactive mode (Default 500)
	ItemsPerRow int           // Stage grid width (Default 5)

	WorldFile    string // World definition; empty uses the embedded default world
	Unrestricted bool   // Skip the command policy filter (Default false)
	MetricsAddr  string // Listen address for /metrics; empty disables it
	JSON         bool   // Emit results as JSON lines in script mode (Default false)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
// LogLvl holds a CLI verbosity (1 error .. 5 trace), not a util.LogLevel.
type ConfigOverride struct {
	LogLvl       *int           `yaml:"verbose,omitempty" json:"verbose,omitempty" envconfig:"VERBOSE"`
	Prompt       *string        `yaml:"prompt,omitempty" json:"prompt,omitempty" envconfig:"PROMPT"`
	CursorChar   *string        `yaml:"cursor_char,omitempty" json:"cursor_char,omitempty" envconfig:"CURSOR_CHAR"`
	CursorBlink  *time.Duration `yaml:"cursor_blink,omitempty" json:"cursor_blink,omitempty" envconfig:"CURSOR_BLINK"`
	Scrollback   *int           `yaml:"scrollback,omitempty" json:"scrollback,omitempty" envconfig:"SCROLLBACK"`
	ItemsPerRow  *int           `yaml:"items_per_row,omitempty" json:"items_per_row,omitempty" envconfig:"ITEMS_PER_ROW"`
	WorldFile    *string        `yaml:"world_file,omitempty" json:"world_file,omitempty" envconfig:"WORLD_FILE"`
	Unrestricted *bool          `yaml:"unrestricted,omitempty" json:"unrestricted,omitempty" envconfig:"UNRESTRICTED"`
	MetricsAddr  *string        `yaml:"metrics_addr,omitempty" json:"metrics_addr,omitempty" envconfig:"METRICS_ADDR"`
	JSON         *bool          `yaml:"json,omitempty" json:"json,omitempty" envconfig:"JSON"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:       DefaultLogLvl,
		Prompt:       DefaultPrompt,
		CursorChar:   DefaultCursorChar,
		CursorBlink:  DefaultCursorBlink,
		Scrollback:   DefaultScrollback,
		ItemsPerRow:  DefaultItemsPerRow,
		Unrestricted: DefaultUnrestricted,
		JSON:         DefaultJSON,
	}
}

// NewConfig creates a default Config and merges override onto it. A nil
// override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// VerbosityToLogLevel maps a CLI verbosity onto a util.LogLevel, clamping to 1..5
func VerbosityToLogLevel(verbose int) util.LogLevel {
	verbose = max(ErrorVerbose, min(TraceVerbose, verbose))
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[verbose-1]
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerbosityToLogLevel(*override.LogLvl)
	}
	if override.Prompt != nil {
		c.Prompt = *override.Prompt
	}
	if override.CursorChar != nil {
		c.CursorChar = *override.CursorChar
	}
	if override.CursorBlink != nil {
		c.CursorBlink = *override.CursorBlink
	}
	if override.Scrollback != nil {
		c.Scrollback = *override.Scrollback
	}
	if override.ItemsPerRow != nil {
		c.ItemsPerRow = *override.ItemsPerRow
	}
	if override.WorldFile != nil {
		c.WorldFile = *override.WorldFile
	}
	if override.Unrestricted != nil {
		c.Unrestricted = *override.Unrestricted
	}
	if override.MetricsAddr != nil {
		c.MetricsAddr = *override.MetricsAddr
	}
	if override.JSON != nil {
		c.JSON = *override.JSON
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// LoadEnvOverride reads VSHELL_* environment variables. Unset variables leave
// the corresponding field nil.
func LoadEnvOverride() (*ConfigOverride, error) {
	var override ConfigOverride
	if err := envconfig.Process(EnvPrefix, &override); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
