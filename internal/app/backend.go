package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jun/gophbox/internal/config"
	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/registry"
	"github.com/jun/gophbox/internal/store"
	"github.com/jun/gophbox/internal/store/bucket"
	"github.com/jun/gophbox/internal/store/disk"
	"github.com/jun/gophbox/internal/store/dynamo"
	"github.com/jun/gophbox/internal/store/sqlite"
)

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return cfg, nil
}

func noClose() error { return nil }

// OpenBackend builds the table backend selected by cfg.StoreBackend. The
// returned func releases it.
func OpenBackend(ctx context.Context, cfg *config.Config) (store.Backend, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemory(), noClose, nil

	case config.BackendDisk:
		b, err := disk.New(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return b, noClose, nil

	case config.BackendSQLite:
		b, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil

	case config.BackendDynamoDB:
		awsCfg, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		return dynamo.New(dynamodb.NewFromConfig(awsCfg), cfg.RegistryTable), noClose, nil

	case config.BackendS3:
		awsCfg, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			// MinIO and LocalStack need path-style addressing.
			if cfg.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3Endpoint)
				o.UsePathStyle = true
			}
		})
		return bucket.New(client, cfg.S3Bucket, cfg.S3Prefix), noClose, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// OpenRegistry opens the configured backend and loads the registry from it.
func OpenRegistry(ctx context.Context, cfg *config.Config, logger logging.Logger) (*registry.Registry, func() error, error) {
	backend, closeFn, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", cfg.StoreBackend, err)
	}
	logger.Info(ctx, "store backend ready", "backend", cfg.StoreBackend)
	reg := registry.New(ctx, store.New(backend, logger), logger)
	return reg, closeFn, nil
}
