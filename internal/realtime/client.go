package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

// SSEClient is one connected display. Label is whatever the display sent
// as ?device=, used only for logs.
type SSEClient struct {
	ID       uuid.UUID
	Label    string
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	Logger   *logger.Logger
}
