package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 8, cfg.DefaultMaxPlayers)
	assert.Equal(t, 3, cfg.DefaultMaxRounds)
	assert.Equal(t, 90*time.Second, cfg.RoundDuration)
	assert.Equal(t, 5*time.Second, cfg.GraceDelay)
	assert.Equal(t, 10*time.Minute, cfg.CompletedRoomTTL)
	assert.Equal(t, 500, cfg.MaxMessages)
	assert.Equal(t, 20000, cfg.MaxSegments)
	assert.Equal(t, 256, cfg.OutboxSize)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"port": 8080,
		"log_level": "debug",
		"round_duration": "30s",
		"allowed_origins": ["http://localhost:3000"]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_config.json"), []byte(content), 0o644))

	t.Setenv("PICTOBLITZ_DEFAULT_MAX_ROUNDS", "5")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RoundDuration)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 5, cfg.DefaultMaxRounds)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_config.json"), []byte(`{"max_players_limit": 4}`), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_config.json"), []byte(`{broken`), 0o644))
	_, err = LoadConfig(dir)
	assert.Error(t, err)
}
