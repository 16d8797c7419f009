package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/tg-session-bot/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123456:test-token")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "123456:test-token", cfg.BotToken)
	require.Equal(t, "Session String Bot", cfg.AppName)
	require.Equal(t, "DEV", cfg.Env)
	require.Equal(t, ":8080", cfg.ListenAddr())
	require.Equal(t, 10*time.Minute, cfg.IdleTimeout)
	require.Equal(t, time.Minute, cfg.SweepInterval)
	require.Equal(t, 3, cfg.MaxAttempts)
	require.Equal(t, "desktop", cfg.DevicePreset)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123456:test-token")
	t.Setenv("PORT", "9090")
	t.Setenv("LOGIN_IDLE_TIMEOUT", "30m")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "5")
	t.Setenv("DEVICE_PRESET", "iphone")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr())
	require.Equal(t, 30*time.Minute, cfg.IdleTimeout)
	require.Equal(t, 5, cfg.MaxAttempts)
	require.Equal(t, "iphone", cfg.DevicePreset)
}

func TestLoad_MissingBotToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")

	_, err := config.Load()
	require.Error(t, err)
}
