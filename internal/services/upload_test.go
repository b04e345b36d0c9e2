package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
)

func TestBuildKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	cases := []struct {
		name string
		root string
		req  UploadRequest
		want string
	}{
		{"video by mime", "kiosk", UploadRequest{FileName: "intro.mp4", FileType: "video/mp4"}, "kiosk/videos/1700000000123-intro.mp4"},
		{"image by mime", "kiosk", UploadRequest{FileName: "a.png", FileType: "image/png"}, "kiosk/images/1700000000123-a.png"},
		{"pdf by mime", "kiosk", UploadRequest{FileName: "m.pdf", FileType: "application/pdf"}, "kiosk/pdfs/1700000000123-m.pdf"},
		{"unknown mime", "kiosk", UploadRequest{FileName: "x.bin", FileType: "application/octet-stream"}, "kiosk/others/1700000000123-x.bin"},
		{"home video", "kiosk", UploadRequest{FileName: "h.mp4", FileType: "video/mp4", Folder: "home"}, "kiosk/videos/1700000000123-h.mp4"},
		{"home subtitle by ext", "kiosk", UploadRequest{FileName: "h.vtt", Folder: "home"}, "kiosk/subtitles/1700000000123-h.vtt"},
		{"qr alias", "kiosk", UploadRequest{FileName: "q.png", FileType: "image/png", Folder: "qr"}, "kiosk/qrcodes/1700000000123-q.png"},
		{"explicit folder", "", UploadRequest{FileName: "b.jpg", FileType: "image/jpeg", Folder: "/banners/"}, "banners/1700000000123-b.jpg"},
		{"path stripped", "kiosk", UploadRequest{FileName: `C:\tmp\evil.png`, FileType: "image/png"}, "kiosk/images/1700000000123-evil.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildKey(tc.root, tc.req, now)
			if err != nil {
				t.Fatalf("BuildKey: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestBuildKeyRejects(t *testing.T) {
	for _, req := range []UploadRequest{
		{FileName: ""},
		{FileName: "../"},
		{FileName: "a.png", Folder: "../etc"},
	} {
		if _, err := BuildKey("kiosk", req, time.Now()); !apierr.IsCode(err, apierr.CodeValidation) {
			t.Fatalf("BuildKey(%+v): want validation got=%v", req, err)
		}
	}
}

func TestPresign(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := NewUploadService(newHarnessLogger(t), blobs, "kiosk", time.Minute).(*uploadService)
	svc.now = func() time.Time { return time.UnixMilli(42) }

	res, err := svc.Presign(context.Background(), UploadRequest{FileName: "a.mp4", FileType: "video/mp4"})
	if err != nil {
		t.Fatalf("Presign: %v", err)
	}
	if res.Key != "kiosk/videos/42-a.mp4" {
		t.Fatalf("key: got=%q", res.Key)
	}
	if !strings.HasPrefix(res.UploadURL, "https://signed.example/kiosk/videos/42-a.mp4") {
		t.Fatalf("upload url: got=%q", res.UploadURL)
	}
	if res.FileURL != "https://cdn.example/kiosk/videos/42-a.mp4" {
		t.Fatalf("file url: got=%q", res.FileURL)
	}

	blobs.presignOK = false
	_, err = svc.Presign(context.Background(), UploadRequest{FileName: "a.mp4", FileType: "video/mp4"})
	if !apierr.IsCode(err, apierr.CodeValidation) || !strings.Contains(apierr.MessageOf(err), "/api/uploads") {
		t.Fatalf("emulator presign: want validation pointing at direct upload got=%v", err)
	}
}

func TestUploadStoresBlob(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := NewUploadService(newHarnessLogger(t), blobs, "kiosk", 0).(*uploadService)
	svc.now = func() time.Time { return time.UnixMilli(7) }

	b, err := svc.Upload(context.Background(), UploadRequest{FileName: "s.vtt", FileType: "text/vtt", Folder: "home"}, strings.NewReader("WEBVTT"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if b.Key != "kiosk/subtitles/7-s.vtt" || b.URL != "https://cdn.example/kiosk/subtitles/7-s.vtt" {
		t.Fatalf("blob: got=%+v", b)
	}
	if string(blobs.objects[b.Key]) != "WEBVTT" {
		t.Fatalf("stored bytes: got=%q", blobs.objects[b.Key])
	}
}
