package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// fileConfig is the JSON shape of a config file. Absent fields keep their
// current value.
type fileConfig struct {
	DevMode            *bool  `json:"dev_mode"`
	StoreBackend       string `json:"store_backend"`
	DataDir            string `json:"data_dir"`
	RegistryTable      string `json:"registry_table"`
	SQLitePath         string `json:"sqlite_path"`
	S3Bucket           string `json:"s3_bucket"`
	S3Prefix           string `json:"s3_prefix"`
	S3Endpoint         string `json:"s3_endpoint"`
	WebhookSecretParam string `json:"webhook_secret_param"`
	JWTSecretParam     string `json:"jwt_secret_param"`
	ListDisplayLimit   int    `json:"list_display_limit"`
	LogLevel           string `json:"log_level"`
	LogFormat          string `json:"log_format"`
	ListenAddr         string `json:"listen_addr"`
	FrontendURL        string `json:"frontend_url"`
}

// parseJSON overlays cfg with the file named by CONFIG_FILE.
func parseJSON(cfg *Config) error {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	if fc.DevMode != nil {
		cfg.DevMode = *fc.DevMode
	}
	set(&cfg.StoreBackend, fc.StoreBackend)
	set(&cfg.DataDir, fc.DataDir)
	set(&cfg.RegistryTable, fc.RegistryTable)
	set(&cfg.SQLitePath, fc.SQLitePath)
	set(&cfg.S3Bucket, fc.S3Bucket)
	set(&cfg.S3Prefix, fc.S3Prefix)
	set(&cfg.S3Endpoint, fc.S3Endpoint)
	set(&cfg.WebhookSecretParam, fc.WebhookSecretParam)
	set(&cfg.JWTSecretParam, fc.JWTSecretParam)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.ListenAddr, fc.ListenAddr)
	set(&cfg.FrontendURL, fc.FrontendURL)
	if fc.ListDisplayLimit != 0 {
		cfg.ListDisplayLimit = fc.ListDisplayLimit
	}
}
