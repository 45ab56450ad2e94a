package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"inventoritoko/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "http://0.0.0.0:4000/", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, "auth_prefs.db", cfg.TokenDBPath)
	assert.Equal(t, "sqlite", cfg.Stub.DBDriver)
	assert.Equal(t, 587, cfg.Stub.SMTP.Port)
	assert.Empty(t, cfg.Stub.RabbitMQURL)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://127.0.0.1:9000")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("DISPLAY_TIMEZONE", "Asia/Jakarta")
	t.Setenv("LOG_FILE_ENABLE", "true")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000/", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "Asia/Jakarta", cfg.DisplayTimezone.String())
	assert.True(t, cfg.Log.FileEnable)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toko.yaml")
	require.NoError(t, os.WriteFile(path, []byte("API_BASE_URL: http://files.local/\nJWT_SECRET: from-file\n"), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/", cfg.APIBaseURL)
	assert.Equal(t, "from-file", cfg.Stub.JWTSecret)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DISPLAY_TIMEZONE", "Mars/Olympus")
	_, err := config.Load(viper.New())
	assert.Error(t, err)
}
