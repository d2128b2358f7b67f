package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearProviderEnv(t)
	cfg, used, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "whisper-1", cfg.LLM.Transcription.Model)
	assert.Equal(t, 25*time.Second, cfg.LLM.Transcription.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Cache.Dir)
}

func TestLoad_File(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "selfassess.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: 127.0.0.1:9000
  read_timeout: 5s
storage:
  backend: gcs
  bucket: cmmc-assessments
log:
  level: debug
  format: console
llm:
  provider: mock
  transcription:
    provider: mock
`), 0o600))

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "gcs", cfg.Storage.Backend)
	assert.Equal(t, "cmmc-assessments", cfg.Storage.Bucket)
	assert.Equal(t, "console", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("SELFASSESS_SERVER_ADDR", ":7000")
	t.Setenv("SELFASSESS_CACHE_IN_MEMORY", "true")
	t.Setenv("SELFASSESS_LLM_TRANSCRIPTION_TIMEOUT", "10s")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.True(t, cfg.Cache.InMemory)
	assert.Equal(t, 10*time.Second, cfg.LLM.Transcription.Timeout)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Default()
	base.LLM.Provider = "mock"
	base.LLM.Transcription.Provider = "mock"
	require.NoError(t, base.Validate())

	noKey := Default()
	noKey.LLM.OpenAI.APIKey = ""
	assert.Error(t, noKey.Validate())

	badStorage := base
	badStorage.Storage.Backend = "s3"
	assert.Error(t, badStorage.Validate())

	badLog := base
	badLog.Log.Level = "loud"
	assert.Error(t, badLog.Validate())

	noCache := base
	noCache.Cache.Dir = ""
	assert.Error(t, noCache.Validate())
}
