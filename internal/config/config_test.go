package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("PORT", "")
		t.Setenv("STORAGE", "")
		t.Setenv("LOCALES", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "memory", cfg.Storage)
		assert.Equal(t, "secret", cfg.JWTSecret)
		assert.False(t, cfg.Localization.Enabled())
	})

	t.Run("Locales list", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("LOCALES", "en, es ,,de")
		t.Setenv("DEFAULT_LOCALE", "es")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"en", "es", "de"}, cfg.Localization.Locales)
		assert.Equal(t, "es", cfg.Localization.DefaultLocale)
	})

	t.Run("Missing JWT_SECRET", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingEnv)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})
}

func TestLoadDatabase(t *testing.T) {
	t.Run("All variables set", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "payload")
		t.Setenv("DB_PASSWORD", "pass")
		t.Setenv("DB_NAME", "cms")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("DB_SSLMODE", "")

		db, err := LoadDatabase()
		require.NoError(t, err)
		assert.Equal(t, "host=localhost user=payload password=pass dbname=cms port=5432 sslmode=disable", db.DSN())
	})

	t.Run("Missing variable", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "")

		_, err := LoadDatabase()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_USER")
	})
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PAYLOAD_TEST_VALUE=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PAYLOAD_TEST_VALUE") })

	LoadEnv(path)

	v, err := GetEnv("PAYLOAD_TEST_VALUE")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", v)
}
