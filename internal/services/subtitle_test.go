package services

import (
	"context"
	"testing"

	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
)

func TestSubtitleRead(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.objects["kiosk/subtitles/1-a.vtt"] = []byte("WEBVTT\n\n00:00.000 --> 00:01.000\nhi")
	svc := NewSubtitleService(newHarnessLogger(t), blobs)
	ctx := context.Background()

	raw, err := svc.Read(ctx, "/kiosk/subtitles/1-a.vtt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(raw[:6]) != "WEBVTT" {
		t.Fatalf("body: got=%q", raw)
	}
	for _, key := range []string{"", "kiosk/subtitles/missing.vtt", "kiosk/../secret"} {
		if _, err := svc.Read(ctx, key); !apierr.IsCode(err, apierr.CodeNotFound) {
			t.Fatalf("Read(%q): want not_found got=%v", key, err)
		}
	}
}
