package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFromFileAndDefaults(t *testing.T) {
	p := writeYAML(t, `
jwt:
  secret: s3cret
db:
  driver: memory
pagination:
  defaultLimit: 6
`)
	c, err := LoadFrom(p)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", c.JWT.Secret)
	assert.Equal(t, 7*24*time.Hour, c.JWT.TTL())
	assert.Equal(t, "memory", c.DB.Driver)
	assert.Equal(t, 6, c.Pagination.DefaultLimit)
	assert.Equal(t, 100, c.Pagination.MaxLimit)
	assert.Equal(t, 4000, c.App.HTTP.Port)
	assert.Equal(t, int64(300), c.Limits.MaxConcurrent)
	assert.False(t, c.Redis.Enabled())
}

func TestEnvOverridesFile(t *testing.T) {
	p := writeYAML(t, "jwt:\n  secret: from-file\n")
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_DB_DRIVER", "mongo")

	c, err := LoadFrom(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, "mongo", c.DB.Driver)
}

func TestMissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "x")
	c, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DB.Driver)
}

func TestSecretRequiredOutsideDemo(t *testing.T) {
	_, err := LoadFrom(writeYAML(t, "db:\n  driver: memory\n"))
	assert.Error(t, err)

	c, err := LoadFrom(writeYAML(t, "demo:\n  enabled: true\n"))
	require.NoError(t, err)
	assert.True(t, c.Demo.Enabled)
}

func TestDemoRefusedInProduction(t *testing.T) {
	_, err := LoadFrom(writeYAML(t, "app:\n  env: production\ndemo:\n  enabled: true\njwt:\n  secret: x\n"))
	assert.ErrorContains(t, err, "demo mode")
}
