package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/burenotti/healthtrack/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  env: prod
  timezone: Europe/Moscow
db:
  dsn: postgres://localhost/healthtrack
jwt:
  secret: s3cret
`)
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.Production, cfg.App.Env)
	assert.Equal(t, "Europe/Moscow", cfg.App.Timezone.Location().String())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.DB.Migrate)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenTTL)
}

func TestLoad_Rejects(t *testing.T) {
	for name, body := range map[string]string{
		"unknown env": "app:\n  env: staging\ndb:\n  dsn: x\njwt:\n  secret: x\n",
		"unknown tz":  "app:\n  env: dev\n  timezone: Mars/Olympus\ndb:\n  dsn: x\njwt:\n  secret: x\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, body))
			assert.ErrorIs(t, err, config.ErrConfigNotLoaded)
		})
	}
}
