package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/kiosk-backend/internal/http"
	httpH "github.com/yungbote/kiosk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/kiosk-backend/internal/http/middleware"
	"github.com/yungbote/kiosk-backend/internal/observability"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
	"github.com/yungbote/kiosk-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Playback *httpH.PlaybackHandler
	Realtime *httpH.RealtimeHandler
	Admin    *httpH.AdminHandler
	Node     *httpH.NodeHandler
	VVIP     *httpH.VVIPHandler
	Home     *httpH.HomeHandler
	QR       *httpH.QRHandler
	Upload   *httpH.UploadHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Playback: httpH.NewPlaybackHandler(services.Tree, services.Home, services.QR, services.VVIP, services.Subtitles),
		Realtime: httpH.NewRealtimeHandler(log, sseHub),
		Admin:    httpH.NewAdminHandler(services.Auth, services.Audit),
		Node:     httpH.NewNodeHandler(services.Nodes),
		VVIP:     httpH.NewVVIPHandler(services.VVIP),
		Home:     httpH.NewHomeHandler(services.Home),
		QR:       httpH.NewQRHandler(services.QR),
		Upload:   httpH.NewUploadHandler(services.Uploads),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		CORSOrigins:     cfg.CORSOrigins,
		Metrics:         metrics,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		PlaybackHandler: handlers.Playback,
		RealtimeHandler: handlers.Realtime,
		AdminHandler:    handlers.Admin,
		NodeHandler:     handlers.Node,
		VVIPHandler:     handlers.VVIP,
		HomeHandler:     handlers.Home,
		QRHandler:       handlers.QR,
		UploadHandler:   handlers.Upload,
	})
}
