package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/kiosk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/kiosk-backend/internal/http/middleware"
	"github.com/yungbote/kiosk-backend/internal/observability"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	PlaybackHandler *httpH.PlaybackHandler
	RealtimeHandler *httpH.RealtimeHandler
	AdminHandler    *httpH.AdminHandler
	NodeHandler     *httpH.NodeHandler
	VVIPHandler     *httpH.VVIPHandler
	HomeHandler     *httpH.HomeHandler
	QRHandler       *httpH.QRHandler
	UploadHandler   *httpH.UploadHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")

	// Display read API (public)
	if h := cfg.PlaybackHandler; h != nil {
		pb := api.Group("/playback")
		pb.GET("/tree", h.Tree)
		pb.GET("/home", h.Home)
		pb.GET("/qr", h.QR)
		pb.GET("/vvip", h.VVIP)
		pb.GET("/subtitles/*key", h.Subtitle)
		if cfg.RealtimeHandler != nil {
			pb.GET("/stream", cfg.RealtimeHandler.SSEStream)
		}
	}
	if cfg.AdminHandler != nil {
		api.POST("/admin/login", cfg.AdminHandler.Login)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAdmin())
	}

	if h := cfg.AdminHandler; h != nil {
		protected.GET("/admin/storage/audit", h.StorageAudit)
	}

	// Uploads
	if h := cfg.UploadHandler; h != nil {
		protected.POST("/uploads/presign", h.Presign)
		protected.POST("/uploads", h.Upload)
	}

	// Content tree
	if h := cfg.NodeHandler; h != nil {
		protected.GET("/nodes", h.ListRoots)
		protected.POST("/nodes", h.Create)
		protected.GET("/nodes/:id", h.Get)
		protected.PUT("/nodes/:id", h.Update)
		protected.DELETE("/nodes/:id", h.Delete)
		protected.PATCH("/nodes/:id/slideshow-images", h.RemoveSlideshowImage)
	}

	// VVIPs
	if h := cfg.VVIPHandler; h != nil {
		protected.GET("/vvips", h.List)
		protected.POST("/vvips", h.Create)
		protected.GET("/vvips/:id", h.Get)
		protected.PUT("/vvips/:id", h.Update)
		protected.DELETE("/vvips/:id", h.Delete)
	}

	// Singleton slots
	if h := cfg.HomeHandler; h != nil {
		protected.PUT("/home", h.Replace)
		protected.DELETE("/home", h.Delete)
	}
	if h := cfg.QRHandler; h != nil {
		protected.POST("/qr", h.Replace)
		protected.PUT("/qr", h.Update)
		protected.DELETE("/qr", h.Delete)
	}

	return r
}
