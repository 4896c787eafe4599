// Package config assembles runtime settings from defaults, an optional JSON
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jun/gophbox/internal/secret"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendDisk     = "disk"
	BackendDynamoDB = "dynamodb"
	BackendSQLite   = "sqlite"
	BackendS3       = "s3"
)

// Config holds runtime settings shared by the Lambda, the local server and boxctl.
type Config struct {
	DevMode bool

	// Store selection and per-backend settings.
	StoreBackend  string
	DataDir       string
	RegistryTable string
	SQLitePath    string
	S3Bucket      string
	S3Prefix      string
	S3Endpoint    string

	WebhookSecretParam string
	JWTSecretParam     string

	ListDisplayLimit int

	LogLevel  string
	LogFormat string

	ListenAddr  string
	FrontendURL string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DevMode = false
	c.StoreBackend = BackendDisk
	c.DataDir = "."
	c.RegistryTable = "GophboxRegistry"
	c.SQLitePath = "gophbox.db"
	c.S3Prefix = "gophbox"
	c.WebhookSecretParam = secret.WebhookSecretParam
	c.JWTSecretParam = secret.JWTSecretParam
	c.ListDisplayLimit = 50
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.ListenAddr = ":8080"
	c.FrontendURL = "http://localhost:3000"
}

// Load builds a Config: defaults, then the JSON file named by CONFIG_FILE
// (if set), then environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend is known and fully configured.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendMemory:
	case BackendDisk:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the disk backend"))
		}
	case BackendDynamoDB:
		if c.RegistryTable == "" {
			errs = append(errs, errors.New("REGISTRY_TABLE is required for the dynamodb backend"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.ListDisplayLimit <= 0 {
		errs = append(errs, fmt.Errorf("LIST_DISPLAY_LIMIT must be positive, got %d", c.ListDisplayLimit))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
