package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestMustLoad(t *testing.T) {
	t.Run("Applies defaults", func(t *testing.T) {
		// Given: a config file that only sets the log level
		path := writeConfig(t, "log-level: debug\n")

		// When: loading it
		conf := MustLoad(path)

		// Then: every other field falls back to its default
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "9091", conf.SocketPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "bgio", conf.Redis.KeyPrefix)
		assert.Equal(t, 24*time.Hour, conf.Redis.GameTTL)
		assert.False(t, conf.Postgres.Enabled())
		assert.Equal(t, "tictactoe", conf.Metrics.Namespace)
	})

	t.Run("Reads nested sections", func(t *testing.T) {
		path := writeConfig(t, `
redis:
  host: cache
  port: "6380"
  key-prefix: ttt
  game-ttl: 30m
postgres:
  host: db
  port: 5433
  user: game
  password: secret
  dbname: history
`)

		conf := MustLoad(path)

		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, "ttt", conf.Redis.KeyPrefix)
		assert.Equal(t, 30*time.Minute, conf.Redis.GameTTL)
		require.True(t, conf.Postgres.Enabled())
		assert.Equal(t, "host=db port=5433 user=game password=secret dbname=history sslmode=disable", conf.Postgres.GetDSN())
	})

	t.Run("Panics on missing file", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
