package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/kiosk-backend/internal/http/response"
	"github.com/yungbote/kiosk-backend/internal/services"
)

// PlaybackHandler serves the unauthenticated read API the displays poll.
type PlaybackHandler struct {
	tree      services.TreeAssembler
	home      services.HomeService
	qr        services.QRService
	vvip      services.VVIPService
	subtitles services.SubtitleService
}

func NewPlaybackHandler(
	tree services.TreeAssembler,
	home services.HomeService,
	qr services.QRService,
	vvip services.VVIPService,
	subtitles services.SubtitleService,
) *PlaybackHandler {
	return &PlaybackHandler{tree: tree, home: home, qr: qr, vvip: vvip, subtitles: subtitles}
}

// GET /api/playback/tree
func (h *PlaybackHandler) Tree(c *gin.Context) {
	tree, err := h.tree.Playback(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tree": tree})
}

// GET /api/playback/home
func (h *PlaybackHandler) Home(c *gin.Context) {
	home, err := h.home.Get(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if home == nil {
		response.RespondOK(c, gin.H{"ok": false, "video": nil, "subtitle": nil})
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "video": home.Video, "subtitle": home.Subtitle})
}

// GET /api/playback/qr
func (h *PlaybackHandler) QR(c *gin.Context) {
	qr, err := h.qr.Get(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"qr": qr})
}

// GET /api/playback/vvip
func (h *PlaybackHandler) VVIP(c *gin.Context) {
	v, err := h.vvip.Playing(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"vvip": v})
}

// GET /api/playback/subtitles/*key
func (h *PlaybackHandler) Subtitle(c *gin.Context) {
	raw, err := h.subtitles.Read(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/vtt; charset=utf-8", raw)
}
