package config

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	defaultListen      = ":8080"
	defaultToolTimeout = 60 * time.Second
)

// MCP transport modes.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config represents the main configuration structure
type Config struct {
	Listen    string `json:"listen" mapstructure:"listen"`
	DataDir   string `json:"data_dir" mapstructure:"data-dir"`
	Connector string `json:"connector" mapstructure:"connector"`

	// Default user identity for single-user (local) installs
	UserID string `json:"user_id" mapstructure:"user-id"`

	// Defensive scope checking before dispatch; providers enforce scopes
	// server-side regardless
	CheckScopes bool `json:"check_scopes" mapstructure:"check-scopes"`

	// Per-provider-call HTTP timeout; no budget is enforced across a
	// multi-call handler sequence
	ToolTimeout time.Duration `json:"tool_timeout" mapstructure:"tool-timeout"`

	// Transport for the MCP endpoint: "stdio" or "http"
	Transport string `json:"transport" mapstructure:"transport"`

	// Logging configuration
	Logging *LogConfig `json:"logging,omitempty" mapstructure:"logging"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level         string `json:"level" mapstructure:"level"`
	EnableFile    bool   `json:"enable_file" mapstructure:"enable-file"`
	EnableConsole bool   `json:"enable_console" mapstructure:"enable-console"`
	Filename      string `json:"filename" mapstructure:"filename"`
	LogDir        string `json:"log_dir,omitempty" mapstructure:"log-dir"`
	MaxSize       int    `json:"max_size" mapstructure:"max-size"`       // MB
	MaxBackups    int    `json:"max_backups" mapstructure:"max-backups"` // number of backup files
	MaxAge        int    `json:"max_age" mapstructure:"max-age"`         // days
	Compress      bool   `json:"compress" mapstructure:"compress"`
	JSONFormat    bool   `json:"json_format" mapstructure:"json-format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		UserID:      "local",
		CheckScopes: true,
		ToolTimeout: defaultToolTimeout,
		Transport:   TransportStdio,
		Logging: &LogConfig{
			Level:         "info",
			EnableFile:    false,
			EnableConsole: true,
			Filename:      "main.log",
			MaxSize:       10,
			MaxBackups:    5,
			MaxAge:        30,
			Compress:      true,
			JSONFormat:    false,
		},
	}
}

// UnmarshalJSON accepts tool_timeout as a duration string ("60s") or as
// nanoseconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type alias Config
	aux := struct {
		ToolTimeout json.RawMessage `json:"tool_timeout"`
		*alias
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.ToolTimeout) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(aux.ToolTimeout, &s); err == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid tool_timeout %q: %w", s, err)
		}
		c.ToolTimeout = d
		return nil
	}

	var ns int64
	if err := json.Unmarshal(aux.ToolTimeout, &ns); err != nil {
		return fmt.Errorf("invalid tool_timeout: %s", aux.ToolTimeout)
	}
	c.ToolTimeout = time.Duration(ns)
	return nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Transport != TransportStdio && c.Transport != TransportHTTP {
		return fmt.Errorf("invalid transport %q: must be \"stdio\" or \"http\"", c.Transport)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("tool_timeout must be positive, got %v", c.ToolTimeout)
	}
	return nil
}
