package config

import (
	"os"
	"strconv"
	"time"

	"stagepass/internal/cache"
	"stagepass/internal/external"
	"stagepass/internal/messaging"
	"stagepass/internal/session"
)

// Government describes the seeded government representative account.
// Only consumers and providers register through the API; the government
// actor is provisioned at startup.
type Government struct {
	Email          string
	Password       string
	PaymentAccount string
}

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	PprofEnabled bool
	PprofPort    string

	CacheEnabled bool

	Session    session.Config
	Government Government
	Ledger     external.LedgerConfig
	Mirror     external.MirrorConfig
	NATS       messaging.Config
	Cache      cache.Config
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		PprofEnabled: getEnv("PPROF_ENABLED", "false") == "true",
		PprofPort:    getEnv("PPROF_PORT", "6060"),

		CacheEnabled: getEnv("CACHE_ENABLED", "false") == "true",

		Session: session.Config{
			Secret: getEnv("SESSION_SECRET", "dev-secret-change-me"),
			TTL:    time.Duration(getEnvInt("SESSION_TTL_MIN", 24*60)) * time.Minute,
		},

		Government: Government{
			Email:          getEnv("GOV_EMAIL", ""),
			Password:       getEnv("GOV_PASSWORD", ""),
			PaymentAccount: getEnv("GOV_PAYMENT_ACCOUNT", ""),
		},

		Ledger: external.LedgerConfig{
			BaseURL:    getEnv("LEDGER_URL", "http://localhost:9081"),
			AccountKey: getEnv("LEDGER_ACCOUNT_KEY", ""),
			Secret:     getEnv("LEDGER_SECRET", ""),
			Timeout:    time.Duration(getEnvInt("LEDGER_TIMEOUT_SEC", 30)) * time.Second,
		},

		Mirror: external.MirrorConfig{
			BaseURL: getEnv("MIRROR_URL", "http://localhost:9082"),
			Timeout: time.Duration(getEnvInt("MIRROR_TIMEOUT_SEC", 30)) * time.Second,
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", ""),
			ClusterID: getEnv("NATS_CLUSTER_ID", "stagepass"),
			ClientID:  getEnv("NATS_CLIENT_ID", "stagepass-api"),
		},

		Cache: cache.Config{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			TTL:      time.Duration(getEnvInt("CACHE_TTL_SEC", 30)) * time.Second,
		},
	}
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer environment variable value or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
