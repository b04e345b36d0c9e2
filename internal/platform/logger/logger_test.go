package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"admin_token", "abc",
		"upload_url", "https://storage.googleapis.com/b/kiosk/videos/1-a.mp4?X-Goog-Signature=deadbeef",
		"key", "kiosk/videos/1-a.mp4",
	})
	if got := out[1]; got != "[REDACTED]" {
		t.Fatalf("admin_token: want=[REDACTED] got=%v", got)
	}
	if got := out[3]; got != "https://storage.googleapis.com/b/kiosk/videos/1-a.mp4?[REDACTED]" {
		t.Fatalf("upload_url: got=%v", got)
	}
	if got := out[5]; got != "kiosk/videos/1-a.mp4" {
		t.Fatalf("key: want unchanged got=%v", got)
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"node_id", "n1", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("odd kv: got=%v", out)
	}
}
