package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIKey, "AZURE_OPENAI_API_KEY", "OPENAI_API_KEY", EnvJDPGUsername, EnvJDPGPassword, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "~/.config/docrag", cfg.Storage.Path)
	assert.Equal(t, "documents.sqlite", cfg.Storage.SQLiteFile)
	assert.Equal(t, "azure", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "https://zapfev.de/zapf/resolutionen/", cfg.Sources.ZaPF.ListURL)
	assert.Empty(t, cfg.Sources.ZaPF.BaseURL)
	assert.Equal(t, "https://www.dpg-physik.de", cfg.Sources.JDPG.BaseURL)
	assert.Equal(t, 8, cfg.Retrieval.DefaultDocs)
	assert.Equal(t, 5, cfg.Retrieval.PerKeywordLimit)
	assert.True(t, cfg.Retrieval.TrimKeywords)
	assert.InDelta(t, 0.1, cfg.Generation.Temperature, 1e-9)
	assert.Equal(t, 1000, cfg.Generation.MaxTokens)
	assert.Equal(t, 60, cfg.HTTP.TimeoutSec)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8501, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
llm:
  provider: "openai"
  model: "gpt-4o"
retrieval:
  default_docs: 3
  trim_keywords: false
server:
  port: 9999
logging:
  level: "debug"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlContent), 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Retrieval.DefaultDocs)
	assert.False(t, cfg.Retrieval.TrimKeywords)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Non-overridden values remain defaults
	assert.Equal(t, 5, cfg.Retrieval.PerKeywordLimit)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 1000, cfg.Generation.MaxTokens)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(":::not valid yaml{{{"), 0644))

	_, err := Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadOrCreateCreatesDefaultsWhenMissing(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "deep", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Retrieval.DefaultDocs)

	_, statErr := os.Stat(cfgPath)
	assert.NoError(t, statErr)

	cfg2, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Retrieval.DefaultDocs, cfg2.Retrieval.DefaultDocs)
	assert.Equal(t, cfg.Sources.JDPG.ListURL, cfg2.Sources.JDPG.ListURL)
}

func TestSecretsAreNeverWrittenToYAML(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-secret")
	t.Setenv(EnvJDPGPassword, "hunter2")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)
	assert.Equal(t, "hunter2", cfg.Sources.JDPG.Password)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")
	assert.NotContains(t, string(data), "hunter2")
}

func TestApplyEnvFallsBackToProviderKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg := DefaultConfig()
	ApplyEnv(cfg)
	assert.Equal(t, "sk-openai", cfg.LLM.APIKey)

	t.Setenv(EnvAPIKey, "sk-docrag")
	ApplyEnv(cfg)
	assert.Equal(t, "sk-docrag", cfg.LLM.APIKey)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is set, even to "".
	require.NoError(t, os.Unsetenv(EnvJDPGUsername))
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("DOCRAG_JDPG_USERNAME=mitglied\n"), 0600))

	require.NoError(t, LoadEnvFile(envPath))

	cfg := DefaultConfig()
	ApplyEnv(cfg)
	assert.Equal(t, "mitglied", cfg.Sources.JDPG.Username)
}

func TestLoadEnvFileMissingIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Provider = "ollama"
	cfg.Generation.Temperature = 1.5
	cfg.Retrieval.PerKeywordLimit = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
	assert.Contains(t, err.Error(), "generation.temperature")
	assert.Contains(t, err.Error(), "retrieval.per_keyword_limit")
}

func TestDatabasePathExpandsHome(t *testing.T) {
	cfg := DefaultConfig()
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "docrag", "documents.sqlite"), path)

	cfg.Storage.Path = "/var/lib/docrag"
	path, err = cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/docrag/documents.sqlite", path)
}
