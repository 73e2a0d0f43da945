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
	for _, key := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
		"MOLTBOOK_API_KEY", "TAVILY_API_KEY", "MUSE_MODEL", "MUSE_STATE_DIR", "MUSE_DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "Muse", cfg.Name)
	assert.Equal(t, ".muse", cfg.StateDir)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "https://www.moltbook.com/api/v1", cfg.Moltbook.BaseURL)
	assert.Equal(t, 3, cfg.Search.MaxSearches)
	assert.Equal(t, 30*time.Minute, cfg.GetHeartbeatInterval())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearProviderEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Muse", cfg.Name)
}

func TestLoadFromYAML(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "muse.yaml")
	content := `
state_dir: /var/lib/muse
llm:
  provider: anthropic
  model: claude-sonnet-4-20250514
  temperature: 0.6
heartbeat:
  interval_minutes: 10
logging:
  debug_mode: true
  level: debug
  categories:
    moltbook: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/muse", cfg.StateDir)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 0.6, cfg.LLM.Temperature)
	assert.Equal(t, 10*time.Minute, cfg.GetHeartbeatInterval())
	assert.True(t, cfg.Logging.DebugMode)
	assert.False(t, cfg.Logging.Categories["moltbook"])

	// Unset fields keep defaults.
	assert.Equal(t, "https://api.tavily.com", cfg.Search.BaseURL)
}

func TestEnvOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("MOLTBOOK_API_KEY", "molt-key")
	t.Setenv("MUSE_STATE_DIR", "/tmp/muse-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gem-key", cfg.LLM.APIKey)
	assert.Equal(t, "molt-key", cfg.Moltbook.APIKey)
	assert.Equal(t, "/tmp/muse-test", cfg.StateDir)
}

func TestValidate(t *testing.T) {
	clearProviderEnv(t)
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate(), "missing API key should fail")

	cfg.LLM.APIKey = "key"
	require.NoError(t, cfg.Validate())

	cfg.LLM.Provider = "mystery"
	assert.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "muse.yaml")

	cfg := DefaultConfig()
	cfg.Heartbeat.IntervalMinutes = 5
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Heartbeat.IntervalMinutes)
}

func TestTimeoutFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "not a duration"
	assert.Equal(t, 60*time.Second, cfg.GetLLMTimeout())
	cfg.Moltbook.Timeout = ""
	assert.Equal(t, 15*time.Second, cfg.GetMoltbookTimeout())
}
