// Package config provides Viper-based configuration loading for the game server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Name identifies this server instance in logs.
	Name string `mapstructure:"name"`
}

// WebsocketConfig holds websocket endpoint settings.
type WebsocketConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// Path is the URL path clients connect to (e.g. "/ws").
	Path string `mapstructure:"path"`
	// ReadLimit is the maximum inbound frame size in bytes.
	ReadLimit int64 `mapstructure:"read_limit"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (w WebsocketConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// LLMConfig holds completion provider settings.
type LLMConfig struct {
	// Provider selects the completion backend: "anthropic" or "openai".
	Provider string `mapstructure:"provider"`
	// AnthropicAPIKey authenticates against the Anthropic API.
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	// AnthropicModel is the Anthropic model identifier.
	AnthropicModel string `mapstructure:"anthropic_model"`
	// OpenAIAPIKey authenticates against the OpenAI API.
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	// OpenAIBaseURL overrides the OpenAI endpoint (for compatible servers).
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	// OpenAIModel is the OpenAI model identifier.
	OpenAIModel string `mapstructure:"openai_model"`
	// MaxTokens caps the length of a single completion.
	MaxTokens int `mapstructure:"max_tokens"`
	// RequestTimeout bounds every completion call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// VerifierConfig holds answer verification settings.
type VerifierConfig struct {
	// Mode selects the verifier implementation: "command" or "coinflip".
	Mode string `mapstructure:"mode"`
	// Command is the external verifier binary (command mode only).
	Command string `mapstructure:"command"`
	// Args are fixed arguments prepended to the claimed answer.
	Args []string `mapstructure:"args"`
	// Timeout bounds a single verification run.
	Timeout time.Duration `mapstructure:"timeout"`
}

// GameConfig holds gameplay tuning settings.
type GameConfig struct {
	// HistoryWindow is the number of conversational turns an agent retains.
	HistoryWindow int `mapstructure:"history_window"`
	// PromptsFile is an optional YAML file of system prompt templates.
	// Empty means the embedded defaults are used.
	PromptsFile string `mapstructure:"prompts_file"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Websocket WebsocketConfig `mapstructure:"websocket"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Verifier  VerifierConfig  `mapstructure:"verifier"`
	Game      GameConfig      `mapstructure:"game"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWebsocket(c.Websocket); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLLM(c.LLM); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateVerifier(c.Verifier); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Name == "" {
		return errors.New("server.name must not be empty")
	}
	return nil
}

func validateWebsocket(w WebsocketConfig) error {
	var errs []string
	if w.Port < 1 || w.Port > 65535 {
		errs = append(errs, fmt.Sprintf("websocket.port must be 1-65535, got %d", w.Port))
	}
	if !strings.HasPrefix(w.Path, "/") {
		errs = append(errs, fmt.Sprintf("websocket.path must start with '/', got %q", w.Path))
	}
	if w.ReadLimit < 1 {
		errs = append(errs, fmt.Sprintf("websocket.read_limit must be >= 1, got %d", w.ReadLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateLLM(l LLMConfig) error {
	var errs []string
	switch l.Provider {
	case "anthropic":
		if l.AnthropicModel == "" {
			errs = append(errs, "llm.anthropic_model must not be empty")
		}
	case "openai":
		if l.OpenAIModel == "" {
			errs = append(errs, "llm.openai_model must not be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("llm.provider must be one of [anthropic, openai], got %q", l.Provider))
	}
	if l.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("llm.max_tokens must be >= 1, got %d", l.MaxTokens))
	}
	if l.RequestTimeout <= 0 {
		errs = append(errs, "llm.request_timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateVerifier(v VerifierConfig) error {
	var errs []string
	switch v.Mode {
	case "command":
		if v.Command == "" {
			errs = append(errs, "verifier.command must not be empty in command mode")
		}
	case "coinflip":
	default:
		errs = append(errs, fmt.Sprintf("verifier.mode must be one of [command, coinflip], got %q", v.Mode))
	}
	if v.Timeout <= 0 {
		errs = append(errs, "verifier.timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	if g.HistoryWindow < 1 {
		return fmt.Errorf("game.history_window must be >= 1, got %d", g.HistoryWindow)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with GAMEMASTER_ prefix
	v.SetEnvPrefix("GAMEMASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshal over defaults cannot fail: the keys mirror the struct tags.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// setDefaults registers every key, including empty secrets and optional
// paths. Viper only applies environment overrides to keys it knows about.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "gamemaster")

	v.SetDefault("websocket.host", "0.0.0.0")
	v.SetDefault("websocket.port", 8000)
	v.SetDefault("websocket.path", "/ws")
	v.SetDefault("websocket.read_limit", 32768)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.anthropic_api_key", "")
	v.SetDefault("llm.anthropic_model", "claude-sonnet-4-5")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.request_timeout", "60s")

	v.SetDefault("verifier.mode", "coinflip")
	v.SetDefault("verifier.command", "")
	v.SetDefault("verifier.args", []string{})
	v.SetDefault("verifier.timeout", "60s")

	v.SetDefault("game.history_window", 10)
	v.SetDefault("game.prompts_file", "")
}
