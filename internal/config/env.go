package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parseEnv overlays cfg with any of the supported environment variables that
// are set. Unset variables leave the current value alone.
func parseEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("DEV_MODE"); ok {
		cfg.DevMode = v == "true" || v == "1"
	}
	str("STORE_BACKEND", &cfg.StoreBackend)
	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	str("DATA_DIR", &cfg.DataDir)
	str("REGISTRY_TABLE", &cfg.RegistryTable)
	str("SQLITE_PATH", &cfg.SQLitePath)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_PREFIX", &cfg.S3Prefix)
	str("S3_ENDPOINT", &cfg.S3Endpoint)
	str("WEBHOOK_SECRET_PARAM", &cfg.WebhookSecretParam)
	str("JWT_SECRET_PARAM", &cfg.JWTSecretParam)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("FRONTEND_URL", &cfg.FrontendURL)

	if v, ok := os.LookupEnv("LIST_DISPLAY_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LIST_DISPLAY_LIMIT: %w", err)
		}
		cfg.ListDisplayLimit = n
	}
	return nil
}
