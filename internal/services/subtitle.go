package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
	"github.com/yungbote/kiosk-backend/internal/platform/gcp"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

const maxSubtitleBytes = 4 << 20

// SubtitleService proxies subtitle tracks so displays can load them from
// the API origin.
type SubtitleService interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

type subtitleService struct {
	log   *logger.Logger
	blobs BlobStore
}

func NewSubtitleService(log *logger.Logger, blobs BlobStore) SubtitleService {
	return &subtitleService{log: log.With("service", "SubtitleService"), blobs: blobs}
}

func (s *subtitleService) Read(ctx context.Context, key string) ([]byte, error) {
	const op = "subtitle.read"
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "..") {
		return nil, apierr.NotFound(op, "subtitle not found")
	}
	rc, err := s.blobs.Open(ctx, key)
	if errors.Is(err, gcp.ErrObjectNotFound) {
		return nil, apierr.NotFound(op, "subtitle not found")
	}
	if err != nil {
		return nil, apierr.Storage(op, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(io.LimitReader(rc, maxSubtitleBytes))
	if err != nil {
		return nil, apierr.Storage(op, err)
	}
	return raw, nil
}
