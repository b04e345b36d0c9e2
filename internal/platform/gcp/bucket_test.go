package gcp

import (
	"errors"
	"testing"
)

func TestStorageConfigFromEnvDefaultGCS(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	t.Setenv("KIOSK_GCS_BUCKET_NAME", "kiosk-media")

	cfg, err := StorageConfigFromEnv()
	if err != nil {
		t.Fatalf("StorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != StorageModeGCS || cfg.Inferred {
		t.Fatalf("mode: want=%q inferred=false got=%q inferred=%v", StorageModeGCS, cfg.Mode, cfg.Inferred)
	}
}

func TestStorageConfigFromEnvInfersEmulator(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443/")
	t.Setenv("KIOSK_GCS_BUCKET_NAME", "kiosk-media")

	cfg, err := StorageConfigFromEnv()
	if err != nil {
		t.Fatalf("StorageConfigFromEnv: %v", err)
	}
	if !cfg.IsEmulator() || !cfg.Inferred {
		t.Fatalf("want inferred emulator, got=%+v", cfg)
	}
	if cfg.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: got=%q", cfg.EmulatorHost)
	}
}

func TestStorageConfigValidation(t *testing.T) {
	cases := []struct {
		name  string
		cfg   StorageConfig
		field string
	}{
		{"missing bucket", StorageConfig{Mode: StorageModeGCS}, "KIOSK_GCS_BUCKET_NAME"},
		{"bad mode", StorageConfig{Mode: "s3", Bucket: "b"}, "OBJECT_STORAGE_MODE"},
		{"emulator without host", StorageConfig{Mode: StorageModeEmulator, Bucket: "b"}, "STORAGE_EMULATOR_HOST"},
		{"relative emulator host", StorageConfig{Mode: StorageModeEmulator, Bucket: "b", EmulatorHost: "fake-gcs:4443"}, "STORAGE_EMULATOR_HOST"},
		{"relative public base", StorageConfig{Mode: StorageModeGCS, Bucket: "b", PublicBaseURL: "localhost"}, "OBJECT_STORAGE_PUBLIC_BASE_URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate: want ConfigError got=%v", err)
			}
			if ce.Field != tc.field {
				t.Fatalf("field: want=%q got=%q", tc.field, ce.Field)
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  StorageConfig
		key  string
		want string
	}{
		{
			name: "gcs default",
			cfg:  StorageConfig{Mode: StorageModeGCS, Bucket: "kiosk-media"},
			key:  "kiosk/videos/1-a.mp4",
			want: "https://storage.googleapis.com/kiosk-media/kiosk/videos/1-a.mp4",
		},
		{
			name: "cdn wins",
			cfg:  StorageConfig{Mode: StorageModeEmulator, Bucket: "kiosk-media", CDNDomain: "cdn.example.com", EmulatorHost: "http://fake-gcs:4443"},
			key:  "/kiosk/images/2-b.png",
			want: "https://cdn.example.com/kiosk/images/2-b.png",
		},
		{
			name: "public base",
			cfg:  StorageConfig{Mode: StorageModeGCS, Bucket: "kiosk-media", PublicBaseURL: "http://localhost:4443"},
			key:  "kiosk/qrcodes/3-c.png",
			want: "http://localhost:4443/kiosk-media/kiosk/qrcodes/3-c.png",
		},
		{
			name: "emulator media endpoint",
			cfg:  StorageConfig{Mode: StorageModeEmulator, Bucket: "kiosk-media", EmulatorHost: "http://fake-gcs:4443"},
			key:  "kiosk/videos/4-d.mp4",
			want: "http://fake-gcs:4443/storage/v1/b/kiosk-media/o/kiosk%2Fvideos%2F4-d.mp4?alt=media",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := publicURL(tc.cfg, tc.key); got != tc.want {
				t.Fatalf("publicURL: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"kiosk/videos/1-a.MP4":      "video/mp4",
		"kiosk/subtitles/1-a.vtt":   "text/vtt",
		"kiosk/images/1-a.jpeg?x=1": "image/jpeg",
		"kiosk/files/1-a.bin":       "",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Fatalf("ContentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}
