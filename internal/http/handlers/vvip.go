package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/http/response"
	"github.com/yungbote/kiosk-backend/internal/services"
)

type VVIPHandler struct {
	vvips services.VVIPService
}

func NewVVIPHandler(vvips services.VVIPService) *VVIPHandler {
	return &VVIPHandler{vvips: vvips}
}

func (h *VVIPHandler) List(c *gin.Context) {
	out, err := h.vvips.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"vvips": out})
}

func (h *VVIPHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	v, err := h.vvips.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"vvip": v})
}

func (h *VVIPHandler) Create(c *gin.Context) {
	var in kiosk.VVIPInput
	if !bindJSON(c, &in) {
		return
	}
	v, err := h.vvips.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"vvip": v})
}

func (h *VVIPHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var p kiosk.VVIPPatch
	if !bindJSON(c, &p) {
		return
	}
	v, err := h.vvips.Update(c.Request.Context(), id, p)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"vvip": v})
}

func (h *VVIPHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.vvips.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
