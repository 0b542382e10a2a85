package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, ":8000", cfg.API.Addr)
	assert.Equal(t, ":8080", cfg.Web.Addr)
	assert.Equal(t, "http://localhost:8000", cfg.Web.BackendURL)
	assert.Equal(t, "ja", cfg.Web.Locale)
	assert.Equal(t, "default.jpg", cfg.Web.DefaultBackground)
	assert.Equal(t, 1000, cfg.Web.MaxSessions)
	assert.Equal(t, "https://api.football-data.org/v4", cfg.FootballData.BaseURL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Prediction.Model)
	assert.InDelta(t, 0.7, cfg.Prediction.Temperature, 1e-6)
	assert.Equal(t, "Japanese", cfg.Prediction.Language)
}

func TestParse_Values(t *testing.T) {
	data := []byte(`
web:
  addr: ":9090"
  locale: en
  timezone: Europe/London
  backgrounds:
    Arsenal: arsenal.jpg
    Liverpool: liverpool.jpg
  session_ttl: 30m
football_data:
  cache_ttl: 1m
redis:
  addr: localhost:6379
  db: 2
telegram:
  chat_id: 42
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Web.Addr)
	assert.Equal(t, "en", cfg.Web.Locale)
	assert.Equal(t, "Europe/London", cfg.Web.TimeZone)
	assert.Equal(t, map[string]string{"Arsenal": "arsenal.jpg", "Liverpool": "liverpool.jpg"}, cfg.Web.Backgrounds)
	assert.Equal(t, 30*time.Minute, cfg.Web.SessionTTL)
	assert.Equal(t, time.Minute, cfg.FootballData.CacheTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("FOOTBALL_DATA_API_KEY", "fd-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Parse([]byte("football_data:\n  api_key: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "fd-key", cfg.FootballData.APIKey)
	assert.Equal(t, "oa-key", cfg.Prediction.OpenAIKey)
	assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)
}

func TestParse_InvalidChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	_, err := Parse([]byte("{}"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  addr: \":7000\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.API.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_ProductionConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "production.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Asia/Tokyo", cfg.Web.TimeZone)
	assert.Equal(t, "arsenal.jpg", cfg.Web.Backgrounds["Arsenal FC"])
	assert.Equal(t, "predictions.db", cfg.SQLite.Path)
}
