package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("MEDIA_BUCKET", "vidhub-media")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "mongodb://127.0.0.1:27017", cfg.Mongo.URI)
	assert.Equal(t, "vidhub", cfg.Mongo.Database)
	assert.Equal(t, time.Hour, cfg.AccessToken.ExpiresIn)
	assert.Equal(t, 720*time.Hour, cfg.RefreshToken.ExpiresIn)
	assert.Equal(t, "access-secret", cfg.AccessToken.Secret)
	assert.Equal(t, "refresh-secret", cfg.RefreshToken.Secret)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "tmp/uploads", cfg.Media.UploadDir)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(10<<20), cfg.Media.MaxUploadSize)
	assert.Equal(t, "public", cfg.StaticDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("ACCESS_TOKEN_EXPIRES_IN", "15m")
	t.Setenv("MEDIA_UPLOAD_TIMEOUT", "0s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.vidhub.test,https://admin.vidhub.test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, 15*time.Minute, cfg.AccessToken.ExpiresIn)
	assert.Equal(t, time.Duration(0), cfg.Media.UploadTimeout)
	assert.Equal(t, []string{"https://app.vidhub.test", "https://admin.vidhub.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	setRequired(t)
	t.Setenv("MONGODB_DATABASE", "from-env")

	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("MONGODB_DATABASE=from-file\nLOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := Load(dotenv)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Mongo.Database)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("MEDIA_BUCKET", "vidhub-media")
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("REFRESH_TOKEN_SECRET", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.ErrorIs(t, err, ErrInvalidConfig)
}
