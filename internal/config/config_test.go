package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("GEMINI_API_KEY", "key")
}

func TestLoadDefaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/snapshot.json", cfg.DataFile)
	assert.Equal(t, "data/images", cfg.ImageDir)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, 60, cfg.OpenCooldownSeconds)
	assert.Empty(t, cfg.DropRoleIDs)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}

func TestLoadInvalidPort(t *testing.T) {
	validEnv(t)
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoadPortOutOfRange(t *testing.T) {
	validEnv(t)
	t.Setenv("PORT", "99999")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoadRoleLists(t *testing.T) {
	validEnv(t)
	t.Setenv("DROP_ROLE_IDS", "111, 222,333,")
	t.Setenv("GRANT_ROLE_IDS", "444")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222", "333"}, cfg.DropRoleIDs)
	assert.Equal(t, []string{"444"}, cfg.GrantRoleIDs)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	validEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}
