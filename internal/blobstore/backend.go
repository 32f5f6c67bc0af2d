package blobstore

import (
	"fmt"

	"github.com/catalogforge/imgingest/internal/config"
	"github.com/catalogforge/imgingest/upload/storage"
)

// OpenBackend constructs the storage.Storage implementation named by
// cfg.Backend. It is the only place that chooses among the pluggable
// storage backends; everything else in the service talks to the Store
// wrapper returned by New.
func OpenBackend(cfg config.BlobConfig) (storage.Storage, error) {
	switch cfg.Backend {
	case "", "local":
		return storage.NewLocal(cfg.Root), nil
	case "s3":
		return storage.NewS3(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
			ForcePathStyle:  cfg.S3ForcePathStyle,
		})
	case "gcs":
		return storage.NewGCS(storage.GCSConfig{
			Bucket:          cfg.GCSBucket,
			ProjectID:       cfg.GCSProjectID,
			CredentialsFile: cfg.GCSCredentialsFile,
		})
	case "azure":
		return storage.NewAzureBlob(storage.AzureConfig{
			AccountName: cfg.AzureAccountName,
			AccountKey:  cfg.AzureAccountKey,
			Container:   cfg.AzureContainer,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
