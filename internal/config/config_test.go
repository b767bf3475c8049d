package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingVariables(t *testing.T) {
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvAnonKey, "")

	cfg, err := Load()
	assert.Nil(t, cfg)

	var missing *MissingEnvError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{EnvBackendURL, EnvAnonKey}, missing.Names)
	assert.Equal(t, "missing required environment variables: BACKEND_URL, BACKEND_ANON_KEY", err.Error())
}

func TestLoad_OneMissing(t *testing.T) {
	t.Setenv(EnvBackendURL, "mongodb://localhost:27017")
	t.Setenv(EnvAnonKey, "")

	_, err := Load()
	var missing *MissingEnvError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{EnvAnonKey}, missing.Names)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvBackendURL, "mongodb://localhost:27017")
	t.Setenv(EnvAnonKey, "anon")
	for _, k := range []string{"BACKEND_DB", "PORT", "JWT_SECRET", "JWT_EXPIRY", "MQTT_BROKER_URL", "MQTT_TOPIC_PREFIX", "LOG_LEVEL", "LOG_FORMAT", "TRUST_PROXY", "COOKIE_SECURE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "inventory", cfg.Database)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Empty(t, cfg.MQTTBrokerURL)
	assert.Equal(t, "inventory", cfg.MQTTTopicPrefix)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TrustProxy)
	assert.False(t, cfg.SecureCookies)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvBackendURL, "mongodb://db:27017")
	t.Setenv(EnvAnonKey, "anon")
	t.Setenv("JWT_EXPIRY", "90m")
	t.Setenv("PORT", "9000")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("COOKIE_SECURE", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.TrustProxy)
	assert.True(t, cfg.SecureCookies)

	t.Setenv("COOKIE_SECURE", "yes please")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.SecureCookies)
}

func TestLoadClient(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAnonKey, "anon")

	c := LoadClient()
	assert.True(t, c.Degraded())
	assert.Equal(t, []string{EnvAPIURL}, c.Missing)

	t.Setenv(EnvAPIURL, "http://localhost:8080/")
	c = LoadClient()
	assert.False(t, c.Degraded())
	assert.Equal(t, "http://localhost:8080", c.APIURL)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadEnvFiles(filepath.Join(dir, "absent.env")))

	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("INVENTORY_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("INVENTORY_TEST_VALUE", "")
	os.Unsetenv("INVENTORY_TEST_VALUE")

	require.NoError(t, LoadEnvFiles(path))
	assert.Equal(t, "from-file", os.Getenv("INVENTORY_TEST_VALUE"))
}
