package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "pyprovider", cfg.Summarizer.Backend)
	assert.Equal(t, "facebook/mbart-large-50-many-to-many-mmt", cfg.Summarizer.Model)
	assert.Equal(t, 512, cfg.Summarizer.MaxInputTokens)
	assert.Equal(t, 30, cfg.Summarizer.MinLength)
	assert.Equal(t, 128, cfg.Summarizer.MaxLength)
	assert.Equal(t, 4, cfg.Summarizer.NumBeams)
	assert.Equal(t, 2.0, cfg.Summarizer.LengthPenalty)
	assert.True(t, cfg.Summarizer.EarlyStopping)
	assert.Equal(t, "hi_IN", cfg.Summarizer.SourceLang)
	assert.Equal(t, 120*time.Second, cfg.Summarizer.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Article.Timeout)
	assert.Equal(t, "hi", cfg.Article.Language)
	assert.Equal(t, 1500, cfg.Document.PreviewChars)
	assert.Equal(t, int64(20<<20), cfg.Document.MaxUploadSize)
	assert.True(t, cfg.Cache.Enable)
	assert.Equal(t, "memory", cfg.Cache.Type)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  mode: debug
summarizer:
  num_beams: 2
  max_length: 96
  timeout: 45s
article:
  timeout: 5s
cache:
  type: redis
  address: redis:6379
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 2, cfg.Summarizer.NumBeams)
	assert.Equal(t, 96, cfg.Summarizer.MaxLength)
	assert.Equal(t, 45*time.Second, cfg.Summarizer.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Article.Timeout)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, "redis:6379", cfg.Cache.Address)
	// 未设置的项保持默认值
	assert.Equal(t, 30, cfg.Summarizer.MinLength)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SUMMARIZER_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	t.Setenv("SUMMARIZER_TOKENIZER_PATH", "/models/mbart/tokenizer.json")
	path := writeConfig(t, `
openai:
  api_key: ${TEST_OPENAI_KEY}
  model: gpt-4o-mini
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Summarizer.Backend)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "/models/mbart/tokenizer.json", cfg.Summarizer.TokenizerPath)
}

func TestLoadInvalid(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		_, err := Load(writeConfig(t, "summarizer:\n  backend: t5\n"))
		assert.Error(t, err)
	})

	t.Run("openai without key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := Load(writeConfig(t, "summarizer:\n  backend: openai\n"))
		assert.Error(t, err)
	})

	t.Run("openai without tokenizer", func(t *testing.T) {
		t.Setenv("SUMMARIZER_TOKENIZER_PATH", "")
		_, err := Load(writeConfig(t, "summarizer:\n  backend: openai\nopenai:\n  api_key: sk-test\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tokenizer_path")
	})

	t.Run("unknown cache type", func(t *testing.T) {
		_, err := Load(writeConfig(t, "cache:\n  type: memcached\n"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [port\n"))
		assert.Error(t, err)
	})
}
