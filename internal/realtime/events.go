package realtime

// ChannelKiosk is the only channel today; every kiosk display subscribes to it.
const ChannelKiosk = "kiosk"

type SSEEvent string

const (
	SSEEventTreeChanged SSEEvent = "tree_changed"
	SSEEventHomeChanged SSEEvent = "home_changed"
	SSEEventQRChanged   SSEEvent = "qr_changed"
	SSEEventVVIPChanged SSEEvent = "vvip_changed"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
