package snapshot

import (
	"context"
	"fmt"

	"github.com/schemasmith/schemasmith/internal/config"
)

// Open returns the store selected by cfg.
func Open(ctx context.Context, cfg config.SnapshotConfig) (Store, error) {
	switch cfg.Store {
	case "", "file":
		return NewFileStore(cfg.Directory), nil
	case "mongodb":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("snapshots.mongo_uri is required for the mongodb store")
		}
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("snapshots.s3_bucket is required for the s3 store")
		}
		return NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSProfile, cfg.AWSRegion)
	default:
		return nil, fmt.Errorf("unsupported snapshot store: %s", cfg.Store)
	}
}
