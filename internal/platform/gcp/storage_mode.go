package gcp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yungbote/kiosk-backend/internal/platform/envutil"
)

type StorageMode string

const (
	StorageModeGCS      StorageMode = "gcs"
	StorageModeEmulator StorageMode = "gcs_emulator"
)

// StorageConfig describes the single kiosk media bucket.
type StorageConfig struct {
	Mode          StorageMode
	EmulatorHost  string
	Bucket        string
	CDNDomain     string
	PublicBaseURL string
	// Set when the mode was inferred from STORAGE_EMULATOR_HOST alone.
	Inferred bool
}

func (cfg StorageConfig) IsEmulator() bool { return cfg.Mode == StorageModeEmulator }

type ConfigError struct {
	Field string
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid storage config"
	}
	if e.Value == "" {
		return fmt.Sprintf("storage config: %s is required", e.Field)
	}
	return fmt.Sprintf("storage config: invalid %s=%q", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// StorageConfigFromEnv reads OBJECT_STORAGE_MODE, STORAGE_EMULATOR_HOST,
// KIOSK_GCS_BUCKET_NAME, KIOSK_CDN_DOMAIN and OBJECT_STORAGE_PUBLIC_BASE_URL.
func StorageConfigFromEnv() (StorageConfig, error) {
	cfg := StorageConfig{
		EmulatorHost:  strings.TrimRight(envutil.String("STORAGE_EMULATOR_HOST", ""), "/"),
		Bucket:        envutil.String("KIOSK_GCS_BUCKET_NAME", ""),
		CDNDomain:     strings.Trim(envutil.String("KIOSK_CDN_DOMAIN", ""), "/"),
		PublicBaseURL: strings.TrimRight(envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", ""), "/"),
	}
	raw := envutil.String("OBJECT_STORAGE_MODE", "")
	switch StorageMode(strings.ToLower(raw)) {
	case "":
		cfg.Mode = StorageModeGCS
		if cfg.EmulatorHost != "" {
			cfg.Mode = StorageModeEmulator
			cfg.Inferred = true
		}
	case StorageModeGCS:
		cfg.Mode = StorageModeGCS
	case StorageModeEmulator:
		cfg.Mode = StorageModeEmulator
	default:
		return cfg, &ConfigError{Field: "OBJECT_STORAGE_MODE", Value: raw}
	}
	return cfg, cfg.Validate()
}

func (cfg StorageConfig) Validate() error {
	if cfg.Mode != StorageModeGCS && cfg.Mode != StorageModeEmulator {
		return &ConfigError{Field: "OBJECT_STORAGE_MODE", Value: string(cfg.Mode)}
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return &ConfigError{Field: "KIOSK_GCS_BUCKET_NAME"}
	}
	if cfg.PublicBaseURL != "" {
		if err := checkAbsURL(cfg.PublicBaseURL); err != nil {
			return &ConfigError{Field: "OBJECT_STORAGE_PUBLIC_BASE_URL", Value: cfg.PublicBaseURL, Cause: err}
		}
	}
	if !cfg.IsEmulator() {
		return nil
	}
	if cfg.EmulatorHost == "" {
		return &ConfigError{Field: "STORAGE_EMULATOR_HOST"}
	}
	if err := checkAbsURL(cfg.EmulatorHost); err != nil {
		return &ConfigError{Field: "STORAGE_EMULATOR_HOST", Value: cfg.EmulatorHost, Cause: err}
	}
	return nil
}

func checkAbsURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("expected absolute url like http://localhost:4443")
	}
	return nil
}
