package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/kiosk-backend/internal/platform/gcp"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

var newBucketServiceWithConfig = gcp.NewBucketServiceWithConfig

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidMode         StorageBootstrapErrorCode = "invalid_mode"
	StorageBootstrapErrorMissingBucket       StorageBootstrapErrorCode = "missing_bucket"
	StorageBootstrapErrorMissingEmulatorHost StorageBootstrapErrorCode = "missing_emulator_host"
	StorageBootstrapErrorInvalidEmulatorHost StorageBootstrapErrorCode = "invalid_emulator_host"
	StorageBootstrapErrorInvalidPublicBase   StorageBootstrapErrorCode = "invalid_public_base_url"
	StorageBootstrapErrorConnectFailed       StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code         StorageBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBucketService reads the storage env and opens the media bucket.
// Failures come back as *StorageBootstrapError with a stable code.
func resolveBucketService(log *logger.Logger) (gcp.BucketService, error) {
	storageCfg, err := gcp.StorageConfigFromEnv()
	if err != nil {
		classified := classifyStorageBootstrapError(storageCfg, err)
		logStorageBootstrapFailure(log, storageCfg, classified)
		return nil, classified
	}
	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_inferred", storageCfg.Inferred,
		"emulator_host", storageCfg.EmulatorHost,
	)
	bucket, err := newBucketServiceWithConfig(log, storageCfg)
	if err != nil {
		classified := classifyStorageBootstrapError(storageCfg, err)
		logStorageBootstrapFailure(log, storageCfg, classified)
		return nil, classified
	}
	return bucket, nil
}

func logStorageBootstrapFailure(log *logger.Logger, storageCfg gcp.StorageConfig, err error) {
	log.Error(
		"Object storage provider bootstrap failed",
		"mode", storageCfg.Mode,
		"mode_inferred", storageCfg.Inferred,
		"emulator_host", storageCfg.EmulatorHost,
		"error_code", storageBootstrapErrorCode(err),
		"error", err,
	)
}

func classifyStorageBootstrapError(storageCfg gcp.StorageConfig, err error) error {
	code := StorageBootstrapErrorConnectFailed
	var cfgErr *gcp.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Field {
		case "OBJECT_STORAGE_MODE":
			code = StorageBootstrapErrorInvalidMode
		case "KIOSK_GCS_BUCKET_NAME":
			code = StorageBootstrapErrorMissingBucket
		case "STORAGE_EMULATOR_HOST":
			code = StorageBootstrapErrorInvalidEmulatorHost
			if cfgErr.Value == "" {
				code = StorageBootstrapErrorMissingEmulatorHost
			}
		case "OBJECT_STORAGE_PUBLIC_BASE_URL":
			code = StorageBootstrapErrorInvalidPublicBase
		}
	}
	return &StorageBootstrapError{
		Code:         code,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageBootstrapErrorCode(err error) StorageBootstrapErrorCode {
	var bootstrapErr *StorageBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageBootstrapErrorConnectFailed
}
