// Package config loads and validates gateway configuration from the
// environment, with an optional configuration file layered underneath.
// Environment variables always win over file values.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/c360/graphgate/errors"
)

// LLM holds the inference endpoint configuration.
type LLM struct {
	Host    string        `mapstructure:"llm_host"`
	Model   string        `mapstructure:"llm_model"`
	Timeout time.Duration `mapstructure:"-"`
}

// Graph holds the graph-store endpoint configuration.
type Graph struct {
	Host          string        `mapstructure:"graph_host"`
	Port          int           `mapstructure:"graph_port"`
	Name          string        `mapstructure:"graph_name"`
	ExecTimeout   time.Duration `mapstructure:"-"`
	SchemaTimeout time.Duration `mapstructure:"-"`
	Workers       int           `mapstructure:"exec_workers"`
}

// Session holds per-session policy configuration.
type Session struct {
	TurnTimeout time.Duration `mapstructure:"-"`
	Heartbeat   time.Duration `mapstructure:"-"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

// Config is the complete gateway configuration.
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	LogLevel    string `mapstructure:"log_level"`
	DebugErrors bool   `mapstructure:"debug_errors"`

	LLM     LLM     `mapstructure:",squash"`
	Graph   Graph   `mapstructure:",squash"`
	Session Session `mapstructure:",squash"`
}

// Recognized environment variables. Bare names, no prefix, matching the
// deployment contract.
var envKeys = []string{
	"LISTEN_ADDR", "LOG_LEVEL", "DEBUG_ERRORS",
	"LLM_HOST", "LLM_MODEL", "LLM_TIMEOUT_S",
	"GRAPH_HOST", "GRAPH_PORT", "GRAPH_NAME",
	"EXEC_TIMEOUT_S", "SCHEMA_TIMEOUT_S", "TURN_TIMEOUT_S",
	"HEARTBEAT_S", "MAX_SESSIONS", "EXEC_WORKERS",
}

// Load reads configuration from the environment and, when path is
// non-empty, a configuration file. Missing file at an explicit path is an
// error; all other values fall back to defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("debug_errors", false)
	v.SetDefault("llm_host", "http://localhost:11434")
	v.SetDefault("llm_model", "llama2")
	v.SetDefault("llm_timeout_s", 60)
	v.SetDefault("graph_host", "localhost")
	v.SetDefault("graph_port", 6379)
	v.SetDefault("graph_name", "agent_poc")
	v.SetDefault("exec_timeout_s", 15)
	v.SetDefault("schema_timeout_s", 10)
	v.SetDefault("turn_timeout_s", 150)
	v.SetDefault("heartbeat_s", 30)
	v.SetDefault("max_sessions", 256)
	v.SetDefault("exec_workers", 8)

	for _, key := range envKeys {
		if err := v.BindEnv(toLowerSnake(key), key); err != nil {
			return nil, errors.Wrap(err, "config", "Load", "env binding")
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "config", "Load", "config file read")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "config", "Load", "config unmarshal")
	}

	cfg.LLM.Timeout = time.Duration(v.GetInt("llm_timeout_s")) * time.Second
	cfg.Graph.ExecTimeout = time.Duration(v.GetInt("exec_timeout_s")) * time.Second
	cfg.Graph.SchemaTimeout = time.Duration(v.GetInt("schema_timeout_s")) * time.Second
	cfg.Session.TurnTimeout = time.Duration(v.GetInt("turn_timeout_s")) * time.Second
	cfg.Session.Heartbeat = time.Duration(v.GetInt("heartbeat_s")) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the gateway cannot run with.
func (c *Config) Validate() error {
	fail := func(msg string) error {
		return errors.WrapKind(errors.KindInternal,
			fmt.Errorf("%w: %s", errors.ErrInvalidConfig, msg),
			"config", "Validate", "configuration check")
	}

	if c.LLM.Host == "" {
		return fail("LLM_HOST must not be empty")
	}
	if c.LLM.Model == "" {
		return fail("LLM_MODEL must not be empty")
	}
	if c.Graph.Host == "" {
		return fail("GRAPH_HOST must not be empty")
	}
	if c.Graph.Port <= 0 || c.Graph.Port > 65535 {
		return fail(fmt.Sprintf("GRAPH_PORT out of range: %d", c.Graph.Port))
	}
	if c.Graph.Name == "" {
		return fail("GRAPH_NAME must not be empty")
	}
	if c.LLM.Timeout <= 0 {
		return fail("LLM_TIMEOUT_S must be positive")
	}
	if c.Graph.ExecTimeout <= 0 {
		return fail("EXEC_TIMEOUT_S must be positive")
	}
	if c.Graph.SchemaTimeout <= 0 {
		return fail("SCHEMA_TIMEOUT_S must be positive")
	}
	if c.Session.TurnTimeout <= 0 {
		return fail("TURN_TIMEOUT_S must be positive")
	}
	if c.Session.Heartbeat <= 0 {
		return fail("HEARTBEAT_S must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		return fail("MAX_SESSIONS must be positive")
	}
	if c.Graph.Workers <= 0 {
		return fail("EXEC_WORKERS must be positive")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fail(fmt.Sprintf("invalid LOG_LEVEL: %q", c.LogLevel))
	}

	return nil
}

// GraphAddr returns the host:port of the graph store.
func (c *Config) GraphAddr() string {
	return fmt.Sprintf("%s:%d", c.Graph.Host, c.Graph.Port)
}

func toLowerSnake(envKey string) string {
	out := make([]byte, len(envKey))
	for i := 0; i < len(envKey); i++ {
		ch := envKey[i]
		if ch >= 'A' && ch <= 'Z' {
			ch += 'a' - 'A'
		}
		out[i] = ch
	}
	return string(out)
}
