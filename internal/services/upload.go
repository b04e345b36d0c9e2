package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
	"github.com/yungbote/kiosk-backend/internal/platform/gcp"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

// Folder hints understood by BuildKey besides literal category names.
const (
	FolderHome = "home"
	FolderQR   = "qrcodes"
)

type UploadRequest struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	Folder   string `json:"folder"`
}

type PresignResult struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	FileURL   string `json:"file_url"`
}

type UploadService interface {
	Presign(ctx context.Context, req UploadRequest) (*PresignResult, error)
	Upload(ctx context.Context, req UploadRequest, r io.Reader) (*kiosk.Blob, error)
}

type uploadService struct {
	log   *logger.Logger
	blobs BlobStore
	root  string
	ttl   time.Duration
	now   func() time.Time
}

func NewUploadService(log *logger.Logger, blobs BlobStore, rootFolder string, presignTTL time.Duration) UploadService {
	if presignTTL <= 0 {
		presignTTL = 60 * time.Second
	}
	return &uploadService{
		log:   log.With("service", "UploadService"),
		blobs: blobs,
		root:  strings.Trim(strings.TrimSpace(rootFolder), "/"),
		ttl:   presignTTL,
		now:   time.Now,
	}
}

func (s *uploadService) Presign(ctx context.Context, req UploadRequest) (*PresignResult, error) {
	const op = "upload.presign"
	key, err := BuildKey(s.root, req, s.now())
	if err != nil {
		return nil, err
	}
	signed, err := s.blobs.SignedUploadURL(ctx, key, req.FileType, s.ttl)
	if errors.Is(err, gcp.ErrPresignNotSupported) {
		return nil, apierr.New(apierr.CodeValidation, op, "presigned uploads are unavailable here; use POST /api/uploads", err)
	}
	if err != nil {
		return nil, apierr.Storage(op, err)
	}
	s.log.Debug("presigned upload", "key", key, "upload_url", signed)
	return &PresignResult{UploadURL: signed, Key: key, FileURL: s.blobs.PublicURL(key)}, nil
}

func (s *uploadService) Upload(ctx context.Context, req UploadRequest, r io.Reader) (*kiosk.Blob, error) {
	const op = "upload.put"
	key, err := BuildKey(s.root, req, s.now())
	if err != nil {
		return nil, err
	}
	url, err := s.blobs.Put(ctx, key, req.FileType, r)
	if err != nil {
		return nil, apierr.Storage(op, err)
	}
	s.log.Info("uploaded blob", "key", key, "content_type", req.FileType)
	return &kiosk.Blob{Key: key, URL: url}, nil
}

// BuildKey returns root/category/unixmillis-filename. The category comes
// from the folder hint, else from the MIME type.
func BuildKey(root string, req UploadRequest, now time.Time) (string, error) {
	const op = "upload.key"
	name := strings.ReplaceAll(strings.TrimSpace(req.FileName), `\`, "/")
	name = path.Base(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", apierr.Validation(op, "file_name is required")
	}
	category, err := categoryFor(req)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%d-%s", category, now.UnixMilli(), name)
	if root != "" {
		key = root + "/" + key
	}
	return key, nil
}

func categoryFor(req UploadRequest) (string, error) {
	folder := strings.ToLower(strings.Trim(strings.TrimSpace(req.Folder), "/"))
	mime := strings.ToLower(strings.TrimSpace(req.FileType))
	switch folder {
	case "":
		return CategoryForMIME(mime), nil
	case FolderHome:
		if isSubtitle(mime, req.FileName) {
			return "subtitles", nil
		}
		return "videos", nil
	case "qr", FolderQR:
		return FolderQR, nil
	}
	if strings.Contains(folder, "..") || strings.ContainsAny(folder, `\`) {
		return "", apierr.Validationf("upload.key", "invalid folder %q", req.Folder)
	}
	return folder, nil
}

func CategoryForMIME(mime string) string {
	switch {
	case strings.HasPrefix(mime, "video/"):
		return "videos"
	case strings.HasPrefix(mime, "image/"):
		return "images"
	case mime == "application/pdf":
		return "pdfs"
	default:
		return "others"
	}
}

func isSubtitle(mime, fileName string) bool {
	if strings.Contains(mime, "vtt") || strings.Contains(mime, "srt") || strings.Contains(mime, "subrip") {
		return true
	}
	ext := strings.ToLower(path.Ext(fileName))
	return ext == ".vtt" || ext == ".srt"
}
