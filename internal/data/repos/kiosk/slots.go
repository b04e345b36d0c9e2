package kiosk

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

// HomeRepo stores the single home slot. Get returns nil when unset.
type HomeRepo interface {
	Get(dbc dbctx.Context) (*types.HomeConfig, error)
	Put(dbc dbctx.Context, row *types.HomeConfig) error
	Clear(dbc dbctx.Context) error
}

// QRRepo stores the single qr slot. Get returns nil when unset.
type QRRepo interface {
	Get(dbc dbctx.Context) (*types.QRConfig, error)
	Put(dbc dbctx.Context, row *types.QRConfig) error
	Clear(dbc dbctx.Context) error
}

type homeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHomeRepo(db *gorm.DB, baseLog *logger.Logger) HomeRepo {
	return &homeRepo{db: db, log: baseLog.With("repo", "HomeRepo")}
}

func (r *homeRepo) Get(dbc dbctx.Context) (*types.HomeConfig, error) {
	var out []*types.HomeConfig
	if err := dbc.DB(r.db).Where("slot = ?", types.SlotHome).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *homeRepo) Put(dbc dbctx.Context, row *types.HomeConfig) error {
	row.Slot = types.SlotHome
	return dbc.DB(r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error
}

func (r *homeRepo) Clear(dbc dbctx.Context) error {
	return dbc.DB(r.db).Where("slot = ?", types.SlotHome).Delete(&types.HomeConfig{}).Error
}

type qrRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQRRepo(db *gorm.DB, baseLog *logger.Logger) QRRepo {
	return &qrRepo{db: db, log: baseLog.With("repo", "QRRepo")}
}

func (r *qrRepo) Get(dbc dbctx.Context) (*types.QRConfig, error) {
	var out []*types.QRConfig
	if err := dbc.DB(r.db).Where("slot = ?", types.SlotQR).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *qrRepo) Put(dbc dbctx.Context, row *types.QRConfig) error {
	row.Slot = types.SlotQR
	return dbc.DB(r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error
}

func (r *qrRepo) Clear(dbc dbctx.Context) error {
	return dbc.DB(r.db).Where("slot = ?", types.SlotQR).Delete(&types.QRConfig{}).Error
}
