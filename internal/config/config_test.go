package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "LLM_PROVIDER", "PIPELINE_TIMEOUT", "MAX_AUDIO_MB", "API_KEYS", "RETRIEVAL_BACKEND"} {
		t.Setenv(key, "")
	}

	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, "openai", LLMProvider())
	assert.Equal(t, 120*time.Second, PipelineTimeout())
	assert.Equal(t, int64(25<<20), MaxAudioBytes())
	assert.Empty(t, APIKeys())
	assert.Equal(t, "http", RetrievalBackend())
}

func TestDurationEnv(t *testing.T) {
	t.Setenv("PIPELINE_TIMEOUT", "90s")
	assert.Equal(t, 90*time.Second, PipelineTimeout())

	t.Setenv("PIPELINE_TIMEOUT", "45")
	assert.Equal(t, 45*time.Second, PipelineTimeout())

	t.Setenv("PIPELINE_TIMEOUT", "soon")
	assert.Equal(t, 120*time.Second, PipelineTimeout())
}

func TestProviderKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("CEREBRAS_API_KEY", "csk")
	t.Setenv("GEMINI_API_KEY", "gk")

	t.Setenv("LLM_PROVIDER", "cerebras")
	assert.Equal(t, "csk", LLMSettings().APIKey)

	t.Setenv("LLM_PROVIDER", "mock")
	assert.Empty(t, LLMAPIKey())

	t.Setenv("EMBEDDING_PROVIDER", "gemini")
	assert.Equal(t, "gk", EmbeddingSettings().APIKey)

	t.Setenv("WHISPER_API_KEY", "")
	assert.Equal(t, "sk-openai", TranscriptSettings().WhisperAPIKey)
}

func TestListEnv(t *testing.T) {
	t.Setenv("API_KEYS", " a, ,b ,")
	assert.Equal(t, []string{"a", "b"}, APIKeys())
}

func TestLoad_ReadsSecretSidecar(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("FITCHECK_TEST_PLAIN=from-env\n"), 0o600))
	require.NoError(t, os.WriteFile(envFile+".secret", []byte("FITCHECK_TEST_SECRET=from-secret\n"), 0o600))

	t.Setenv("FITCHECK_ENV", envFile)
	t.Setenv("FITCHECK_TEST_PLAIN", "")
	t.Setenv("FITCHECK_TEST_SECRET", "")
	require.NoError(t, os.Unsetenv("FITCHECK_TEST_PLAIN"))
	require.NoError(t, os.Unsetenv("FITCHECK_TEST_SECRET"))

	require.NoError(t, Load())
	assert.Equal(t, "from-env", os.Getenv("FITCHECK_TEST_PLAIN"))
	assert.Equal(t, "from-secret", os.Getenv("FITCHECK_TEST_SECRET"))
}
