package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/http/response"
	"github.com/yungbote/kiosk-backend/internal/services"
)

type HomeHandler struct {
	home services.HomeService
}

func NewHomeHandler(home services.HomeService) *HomeHandler {
	return &HomeHandler{home: home}
}

// PUT /api/home
func (h *HomeHandler) Replace(c *gin.Context) {
	var in kiosk.HomeInput
	if !bindJSON(c, &in) {
		return
	}
	home, err := h.home.Replace(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"home": home})
}

// DELETE /api/home
func (h *HomeHandler) Delete(c *gin.Context) {
	if err := h.home.Delete(c.Request.Context()); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type QRHandler struct {
	qr services.QRService
}

func NewQRHandler(qr services.QRService) *QRHandler {
	return &QRHandler{qr: qr}
}

// POST /api/qr
func (h *QRHandler) Replace(c *gin.Context) {
	var in kiosk.QRInput
	if !bindJSON(c, &in) {
		return
	}
	qr, err := h.qr.Replace(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"qr": qr})
}

// PUT /api/qr
func (h *QRHandler) Update(c *gin.Context) {
	var p kiosk.QRPatch
	if !bindJSON(c, &p) {
		return
	}
	qr, err := h.qr.Update(c.Request.Context(), p)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"qr": qr})
}

// DELETE /api/qr
func (h *QRHandler) Delete(c *gin.Context) {
	if err := h.qr.Delete(c.Request.Context()); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
