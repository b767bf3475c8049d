// Package config reads service and client settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvBackendURL = "BACKEND_URL"
	EnvAnonKey    = "BACKEND_ANON_KEY"
	EnvAPIURL     = "INVENTORY_API_URL"
)

// DefaultJWTSecret is used when JWT_SECRET is unset.
const DefaultJWTSecret = "default-secret-key-change-in-production"

// MissingEnvError lists every required variable that is unset.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Names, ", ")
}

// Config holds the server settings.
type Config struct {
	BackendURL      string
	AnonKey         string
	Database        string
	Port            string
	JWTSecret       string
	JWTExpiry       time.Duration
	MQTTBrokerURL   string
	MQTTTopicPrefix string
	LogLevel        string
	LogFormat       string
	TrustProxy      bool
	SecureCookies   bool
}

// LoadEnvFiles loads the given dotenv files, or .env when none are named.
// Missing files are not an error.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load reads the server configuration. It fails with *MissingEnvError naming
// every absent required variable.
func Load() (*Config, error) {
	if missing := missingVars(EnvBackendURL, EnvAnonKey); len(missing) > 0 {
		return nil, &MissingEnvError{Names: missing}
	}

	expiry := 24 * time.Hour
	if v := os.Getenv("JWT_EXPIRY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			expiry = parsed
		}
	}

	return &Config{
		BackendURL:      os.Getenv(EnvBackendURL),
		AnonKey:         os.Getenv(EnvAnonKey),
		Database:        envOrDefault("BACKEND_DB", "inventory"),
		Port:            envOrDefault("PORT", "8080"),
		JWTSecret:       envOrDefault("JWT_SECRET", DefaultJWTSecret),
		JWTExpiry:       expiry,
		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTTopicPrefix: envOrDefault("MQTT_TOPIC_PREFIX", "inventory"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
		TrustProxy:      envBool("TRUST_PROXY"),
		SecureCookies:   envBool("COOKIE_SECURE"),
	}, nil
}

// ClientConfig holds the settings of an API consumer.
type ClientConfig struct {
	APIURL  string
	AnonKey string
	Missing []string
}

// Degraded reports whether required client settings are absent. Callers
// substitute a no-op client instead of failing.
func (c ClientConfig) Degraded() bool { return len(c.Missing) > 0 }

// LoadClient reads the client configuration. It never fails.
func LoadClient() ClientConfig {
	return ClientConfig{
		APIURL:  strings.TrimRight(os.Getenv(EnvAPIURL), "/"),
		AnonKey: os.Getenv(EnvAnonKey),
		Missing: missingVars(EnvAPIURL, EnvAnonKey),
	}
}

func missingVars(names ...string) []string {
	var missing []string
	for _, name := range names {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// envBool reads a boolean flag. Unset or unparsable values are false.
func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
