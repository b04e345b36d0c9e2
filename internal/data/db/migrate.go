package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Content tree
		&kiosk.Node{},

		// Priority playback
		&kiosk.VVIP{},

		// Singleton slots
		&kiosk.HomeConfig{},
		&kiosk.QRConfig{},
	)
}
