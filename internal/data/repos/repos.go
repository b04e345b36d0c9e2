package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/kiosk-backend/internal/data/repos/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

type NodeRepo = kiosk.NodeRepo
type VVIPRepo = kiosk.VVIPRepo
type HomeRepo = kiosk.HomeRepo
type QRRepo = kiosk.QRRepo

func NewNodeRepo(db *gorm.DB, baseLog *logger.Logger) NodeRepo { return kiosk.NewNodeRepo(db, baseLog) }
func NewVVIPRepo(db *gorm.DB, baseLog *logger.Logger) VVIPRepo { return kiosk.NewVVIPRepo(db, baseLog) }
func NewHomeRepo(db *gorm.DB, baseLog *logger.Logger) HomeRepo { return kiosk.NewHomeRepo(db, baseLog) }
func NewQRRepo(db *gorm.DB, baseLog *logger.Logger) QRRepo     { return kiosk.NewQRRepo(db, baseLog) }
