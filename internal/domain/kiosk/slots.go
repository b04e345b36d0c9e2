package kiosk

import (
	"strings"
	"time"

	"github.com/yungbote/kiosk-backend/internal/pkg/patch"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
)

// Singleton records live in a named slot; the slot is their only identity.
const (
	SlotHome = "home"
	SlotQR   = "qr"
)

// HomeConfig is the idle content shown when nobody is browsing.
type HomeConfig struct {
	Slot      string    `gorm:"primaryKey;size:16" json:"-"`
	Video     MediaRef  `gorm:"column:video;serializer:json" json:"video"`
	Subtitle  *Blob     `gorm:"column:subtitle;serializer:json" json:"subtitle"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (HomeConfig) TableName() string { return "kiosk_home" }

func (h *HomeConfig) BlobKeys() []string {
	if h == nil {
		return nil
	}
	keys := h.Video.BlobKeys()
	if h.Subtitle != nil {
		keys = appendKey(keys, h.Subtitle.Key)
	}
	return keys
}

// HomeInput replaces the home video; a nil subtitle keeps the existing one.
type HomeInput struct {
	Video    MediaRef `json:"video"`
	Subtitle *Blob    `json:"subtitle"`
}

func (in HomeInput) Validate() error {
	if !in.Video.Present() {
		return apierr.Validation("home.validate", "video is required")
	}
	if in.Subtitle != nil && in.Subtitle.empty() {
		return apierr.Validation("home.validate", "subtitle requires a key")
	}
	return nil
}

const (
	DefaultQRX      = 50
	DefaultQRY      = 50
	DefaultQRWidth  = 20
	DefaultQRHeight = 20
)

// QRConfig is the overlay image shown on top of every screen.
type QRConfig struct {
	Slot      string    `gorm:"primaryKey;size:16" json:"-"`
	Key       string    `gorm:"not null" json:"key"`
	URL       string    `gorm:"not null" json:"url"`
	X         float64   `gorm:"not null" json:"x"`
	Y         float64   `gorm:"not null" json:"y"`
	Width     float64   `gorm:"not null" json:"width"`
	Height    float64   `gorm:"not null" json:"height"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QRConfig) TableName() string { return "kiosk_qr" }

func (q *QRConfig) Validate() error {
	const op = "qr.validate"
	if strings.TrimSpace(q.Key) == "" {
		return apierr.Validation(op, "key is required")
	}
	if q.Width <= 0 || q.Height <= 0 {
		return apierr.Validation(op, "width and height must be positive")
	}
	return nil
}

type QRInput struct {
	Key    string   `json:"key"`
	URL    string   `json:"url"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

func (in QRInput) Build() *QRConfig {
	q := &QRConfig{
		Slot:   SlotQR,
		Key:    strings.TrimSpace(in.Key),
		URL:    strings.TrimSpace(in.URL),
		X:      DefaultQRX,
		Y:      DefaultQRY,
		Width:  DefaultQRWidth,
		Height: DefaultQRHeight,
	}
	if in.X != nil {
		q.X = *in.X
	}
	if in.Y != nil {
		q.Y = *in.Y
	}
	if in.Width != nil {
		q.Width = *in.Width
	}
	if in.Height != nil {
		q.Height = *in.Height
	}
	return q
}

type QRPatch struct {
	Key    patch.Field[string]  `json:"key"`
	URL    patch.Field[string]  `json:"url"`
	X      patch.Field[float64] `json:"x"`
	Y      patch.Field[float64] `json:"y"`
	Width  patch.Field[float64] `json:"width"`
	Height patch.Field[float64] `json:"height"`
}

func (p QRPatch) Apply(old *QRConfig) *QRConfig {
	q := *old
	q.Key = strings.TrimSpace(p.Key.Apply(q.Key))
	q.URL = strings.TrimSpace(p.URL.Apply(q.URL))
	q.X = p.X.Apply(q.X)
	q.Y = p.Y.Apply(q.Y)
	q.Width = p.Width.Apply(q.Width)
	q.Height = p.Height.Apply(q.Height)
	return &q
}
