package kiosk

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/kiosk-backend/internal/pkg/patch"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
)

// VVIP is a priority video that preempts kiosk navigation while Play is set.
// At most one VVIP plays at a time; the service layer enforces it.
type VVIP struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Designation string    `json:"designation"`
	Video       MediaRef  `gorm:"column:video;serializer:json" json:"video"`
	Play        bool      `gorm:"not null;index" json:"play"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;index" json:"updated_at"`
}

func (VVIP) TableName() string { return "kiosk_vvip" }

func (v *VVIP) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v *VVIP) Validate() error {
	const op = "vvip.validate"
	if strings.TrimSpace(v.Name) == "" {
		return apierr.Validation(op, "name is required")
	}
	if !v.Video.Present() {
		return apierr.Validation(op, "video is required")
	}
	return nil
}

func (v *VVIP) BlobKeys() []string {
	if v == nil {
		return nil
	}
	return v.Video.BlobKeys()
}

type VVIPInput struct {
	Name        string   `json:"name"`
	Designation string   `json:"designation"`
	Video       MediaRef `json:"video"`
	Play        bool     `json:"play"`
}

func (in VVIPInput) Build() *VVIP {
	return &VVIP{
		Name:        strings.TrimSpace(in.Name),
		Designation: strings.TrimSpace(in.Designation),
		Video:       in.Video,
		Play:        in.Play,
	}
}

type VVIPPatch struct {
	Name        patch.Field[string]   `json:"name"`
	Designation patch.Field[string]   `json:"designation"`
	Video       patch.Field[MediaRef] `json:"video"`
	Play        patch.Field[bool]     `json:"play"`
}

func (p VVIPPatch) Apply(old *VVIP) *VVIP {
	v := *old
	v.Video = *old.Video.clone()
	v.Name = strings.TrimSpace(p.Name.Apply(v.Name))
	v.Designation = strings.TrimSpace(p.Designation.Apply(v.Designation))
	v.Video = p.Video.Apply(v.Video)
	v.Play = p.Play.Apply(v.Play)
	return &v
}
