package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
	"github.com/yungbote/kiosk-backend/internal/services"
)

type Services struct {
	Media    services.MediaLifecycle
	Notifier services.KioskNotifier

	Tree  services.TreeAssembler
	Nodes services.NodeService
	VVIP  services.VVIPService
	Home  services.HomeService
	QR    services.QRService

	Uploads   services.UploadService
	Subtitles services.SubtitleService
	Audit     services.StorageAudit
	Auth      services.AdminAuth
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	// Every replica forwards bus messages into its own hub, so mutations
	// publish through the bus rather than the local hub.
	notifier := services.NewKioskNotifier(&services.BusEmitter{Bus: clients.SSEBus, Log: log})
	media := services.NewMediaLifecycle(log, clients.Bucket)
	tree := services.NewTreeAssembler(log, repos.Node, clients.TreeCache)

	return Services{
		Media:     media,
		Notifier:  notifier,
		Tree:      tree,
		Nodes:     services.NewNodeService(log, dbctx.NewGormTxRunner(db), repos.Node, media, tree, notifier),
		VVIP:      services.NewVVIPService(log, repos.VVIP, media, notifier),
		Home:      services.NewHomeService(log, repos.Home, media, notifier),
		QR:        services.NewQRService(log, repos.QR, media, notifier),
		Uploads:   services.NewUploadService(log, clients.Bucket, cfg.UploadRootFolder, cfg.PresignTTL),
		Subtitles: services.NewSubtitleService(log, clients.Bucket),
		Audit:     services.NewStorageAudit(log, clients.Bucket, cfg.UploadRootFolder, repos.Node, repos.VVIP, repos.Home, repos.QR),
		Auth:      services.NewAdminAuth(log, cfg.JWTSecretKey, cfg.AdminPasswordHash, cfg.AccessTokenTTL),
	}
}
