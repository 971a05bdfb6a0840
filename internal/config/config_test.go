package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/finbot")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultRowCap, cfg.RowCap)
	assert.Equal(t, "America/Bogota", cfg.DefaultTimezone)
	assert.Equal(t, "COP", cfg.DefaultCurrency)
	assert.False(t, cfg.StrictTimezone)
	assert.True(t, cfg.EnableAuditLogging)
	assert.Equal(t, 10*time.Second, cfg.ExecuteTimeout())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/finbot")
	t.Setenv("FINBOT_PORT", "9090")
	t.Setenv("FINBOT_ROW_CAP", "50")
	t.Setenv("FINBOT_STRICT_TIMEZONE", "true")
	t.Setenv("FINBOT_API_KEYS", "k1,k2")
	t.Setenv("ENABLE_AUTH", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 50, cfg.RowCap)
	assert.True(t, cfg.StrictTimezone)
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys)
	assert.False(t, cfg.EnableAuth)
}
