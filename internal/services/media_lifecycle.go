package services

import (
	"context"
	"strings"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/observability"
	"github.com/yungbote/kiosk-backend/internal/platform/ctxutil"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

// MediaLifecycle is the only place that couples record mutations to blob
// deletion. Repositories never see the BlobStore.
type MediaLifecycle interface {
	Orphaned(before, after []string) []string
	Reap(ctx context.Context, op string, keys ...string)
}

type mediaLifecycle struct {
	log   *logger.Logger
	blobs BlobStore
}

func NewMediaLifecycle(log *logger.Logger, blobs BlobStore) MediaLifecycle {
	return &mediaLifecycle{log: log.With("service", "MediaLifecycle"), blobs: blobs}
}

func (m *mediaLifecycle) Orphaned(before, after []string) []string {
	return kiosk.KeyDiff(before, after)
}

// Reap deletes keys one by one. Failures are logged and swallowed so that a
// storage outage never fails a mutation that already committed.
func (m *mediaLifecycle) Reap(ctx context.Context, op string, keys ...string) {
	if m == nil || m.blobs == nil {
		return
	}
	metrics := observability.Current()
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if err := m.blobs.Delete(ctx, key); err != nil {
			m.log.Warn("blob delete failed; leaving orphan",
				append(ctxutil.LogFields(ctx), "op", op, "key", key, "error", err)...)
			metrics.IncBlobReap(op, false)
			continue
		}
		metrics.IncBlobReap(op, true)
		m.log.Debug("blob reaped", "op", op, "key", key)
	}
}
