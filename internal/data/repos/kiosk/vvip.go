package kiosk

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

type VVIPRepo interface {
	Create(dbc dbctx.Context, row *types.VVIP) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.VVIP, error)
	List(dbc dbctx.Context) ([]*types.VVIP, error)
	GetPlaying(dbc dbctx.Context) (*types.VVIP, error)
	CountPlaying(dbc dbctx.Context) (int64, error)
	Save(dbc dbctx.Context, row *types.VVIP) error
	ResetPlaying(dbc dbctx.Context) (int64, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type vvipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVVIPRepo(db *gorm.DB, baseLog *logger.Logger) VVIPRepo {
	return &vvipRepo{db: db, log: baseLog.With("repo", "VVIPRepo")}
}

func (r *vvipRepo) Create(dbc dbctx.Context, row *types.VVIP) error {
	return dbc.DB(r.db).Create(row).Error
}

func (r *vvipRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.VVIP, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.VVIP
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// List returns newest first.
func (r *vvipRepo) List(dbc dbctx.Context) ([]*types.VVIP, error) {
	var out []*types.VVIP
	if err := dbc.DB(r.db).Order("created_at DESC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetPlaying returns the most recently updated playing VVIP, or nil.
func (r *vvipRepo) GetPlaying(dbc dbctx.Context) (*types.VVIP, error) {
	var out []*types.VVIP
	if err := dbc.DB(r.db).
		Where("play = ?", true).
		Order("updated_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *vvipRepo) CountPlaying(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.VVIP{}).Where("play = ?", true).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *vvipRepo) Save(dbc dbctx.Context, row *types.VVIP) error {
	return dbc.DB(r.db).Save(row).Error
}

// ResetPlaying clears play on every VVIP in one statement.
func (r *vvipRepo) ResetPlaying(dbc dbctx.Context) (int64, error) {
	res := dbc.DB(r.db).
		Model(&types.VVIP{}).
		Where("play = ?", true).
		Update("play", false)
	return res.RowsAffected, res.Error
}

func (r *vvipRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.VVIP{}).Error
}
