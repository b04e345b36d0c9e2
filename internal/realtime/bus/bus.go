package bus

import (
	"context"

	"github.com/yungbote/kiosk-backend/internal/realtime"
)

// Bus fans change events out across server replicas.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
