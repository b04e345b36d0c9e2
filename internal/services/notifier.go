package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/realtime"
)

// KioskNotifier tells connected displays that content changed. Displays
// refetch on receipt; payloads carry ids only.
type KioskNotifier interface {
	TreeChanged(ctx context.Context, nodeID uuid.UUID)
	HomeChanged(ctx context.Context)
	QRChanged(ctx context.Context)
	VVIPChanged(ctx context.Context, vvipID uuid.UUID, play bool)
}

type kioskNotifier struct {
	emit SSEEmitter
}

func NewKioskNotifier(emit SSEEmitter) KioskNotifier {
	return &kioskNotifier{emit: emit}
}

func (n *kioskNotifier) send(ctx context.Context, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil {
		return
	}
	n.emit.Emit(context.WithoutCancel(ctx), realtime.SSEMessage{
		Channel: realtime.ChannelKiosk,
		Event:   event,
		Data:    data,
	})
}

func (n *kioskNotifier) TreeChanged(ctx context.Context, nodeID uuid.UUID) {
	n.send(ctx, realtime.SSEEventTreeChanged, map[string]any{"node_id": nodeID})
}

func (n *kioskNotifier) HomeChanged(ctx context.Context) {
	n.send(ctx, realtime.SSEEventHomeChanged, nil)
}

func (n *kioskNotifier) QRChanged(ctx context.Context) {
	n.send(ctx, realtime.SSEEventQRChanged, nil)
}

func (n *kioskNotifier) VVIPChanged(ctx context.Context, vvipID uuid.UUID, play bool) {
	n.send(ctx, realtime.SSEEventVVIPChanged, map[string]any{"vvip_id": vvipID, "play": play})
}
