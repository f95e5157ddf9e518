package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/dynquery/internal/join"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "DATABASE_DRIVER", "SQL_DIALECT", "SCHEMA_FILE", "SCHEMA_NAME", "JOIN_TYPE", "LIKE_STRINGS", "PORT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pgx", cfg.Driver)
	assert.Equal(t, "postgres", cfg.Dialect)
	assert.Equal(t, "public", cfg.SchemaName)
	assert.Equal(t, join.Inner, cfg.JoinType)
	assert.True(t, cfg.LikeStrings)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("SCHEMA_FILE", "schema.yaml")
	t.Setenv("SQL_DIALECT", "sqlserver")
	t.Setenv("JOIN_TYPE", "left")
	t.Setenv("LIKE_STRINGS", "false")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", cfg.Dialect)
	assert.Equal(t, join.Left, cfg.JoinType)
	assert.False(t, cfg.LikeStrings)
	assert.Equal(t, ":9000", cfg.Addr())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("PORT=7070\nLOG_LEVEL=debug\n"), 0o600))
	os.Unsetenv("PORT")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"driver", map[string]string{"DATABASE_DRIVER": "oracle"}},
		{"schema file", map[string]string{"DATABASE_DRIVER": "sqlite"}},
		{"mysql dsn", map[string]string{"DATABASE_DRIVER": "mysql", "SCHEMA_FILE": "s.yaml", "DATABASE_URL": "user@tcp(host"}},
		{"dialect", map[string]string{"SQL_DIALECT": "db2"}},
		{"join type", map[string]string{"JOIN_TYPE": "cross"}},
		{"like strings", map[string]string{"LIKE_STRINGS": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
