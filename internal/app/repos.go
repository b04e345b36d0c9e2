package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/kiosk-backend/internal/data/repos"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

type Repos struct {
	Node repos.NodeRepo
	VVIP repos.VVIPRepo
	Home repos.HomeRepo
	QR   repos.QRRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Node: repos.NewNodeRepo(db, log),
		VVIP: repos.NewVVIPRepo(db, log),
		Home: repos.NewHomeRepo(db, log),
		QR:   repos.NewQRRepo(db, log),
	}
}
