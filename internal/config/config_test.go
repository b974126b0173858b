package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Name: "gamemaster",
		},
		Websocket: WebsocketConfig{
			Host:      "0.0.0.0",
			Port:      8000,
			Path:      "/ws",
			ReadLimit: 32768,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		LLM: LLMConfig{
			Provider:       "anthropic",
			AnthropicModel: "claude-sonnet-4-5",
			MaxTokens:      1024,
			RequestTimeout: time.Minute,
		},
		Verifier: VerifierConfig{
			Mode:    "coinflip",
			Timeout: time.Minute,
		},
		Game: GameConfig{
			HistoryWindow: 10,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestWebsocketAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:8000", cfg.Websocket.Addr())
}

func TestValidate_EmptyServerName(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Name = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.name")
}

func TestValidate_BadWebsocket(t *testing.T) {
	cfg := validConfig()
	cfg.Websocket.Port = 0
	cfg.Websocket.Path = "ws"
	cfg.Websocket.ReadLimit = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "websocket.port")
	assert.Contains(t, err.Error(), "websocket.path")
	assert.Contains(t, err.Error(), "websocket.read_limit")
}

func TestValidate_BadLogging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")

	cfg = validConfig()
	cfg.Logging.Format = "xml"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "bard"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestValidate_ProviderModelRequired(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.AnthropicModel = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.anthropic_model")

	cfg = validConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAIModel = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.openai_model")
}

func TestValidate_VerifierCommandRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Verifier.Mode = "command"
	cfg.Verifier.Command = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verifier.command")
}

func TestValidate_HistoryWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Game.HistoryWindow = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game.history_window")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Game.HistoryWindow)
	assert.Equal(t, "coinflip", cfg.Verifier.Mode)
	assert.Equal(t, 60*time.Second, cfg.LLM.RequestTimeout)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  name: party
websocket:
  port: 9001
logging:
  level: debug
  format: console
llm:
  provider: openai
  openai_api_key: test-key
  openai_model: gpt-4o-mini
game:
  history_window: 4
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "party", cfg.Server.Name)
	assert.Equal(t, 9001, cfg.Websocket.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 4, cfg.Game.HistoryWindow)
	// Untouched keys fall back to defaults.
	assert.Equal(t, "/ws", cfg.Websocket.Path)
	assert.Equal(t, 60*time.Second, cfg.Verifier.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  name: party\n"), 0o644))

	t.Setenv("GAMEMASTER_LLM_ANTHROPIC_API_KEY", "sk-from-env")
	t.Setenv("GAMEMASTER_LLM_MAX_TOKENS", "2048")
	t.Setenv("GAMEMASTER_VERIFIER_COMMAND", "/usr/local/bin/verify")
	t.Setenv("GAMEMASTER_VERIFIER_MODE", "command")
	t.Setenv("GAMEMASTER_GAME_PROMPTS_FILE", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.LLM.AnthropicAPIKey)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, "command", cfg.Verifier.Mode)
	assert.Equal(t, "/usr/local/bin/verify", cfg.Verifier.Command)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("websocket:\n  port: 0\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "websocket.port")
}
