package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/kiosk-backend/internal/http/response"
	"github.com/yungbote/kiosk-backend/internal/services"
)

type AdminHandler struct {
	auth  services.AdminAuth
	audit services.StorageAudit
}

func NewAdminHandler(auth services.AdminAuth, audit services.StorageAudit) *AdminHandler {
	return &AdminHandler{auth: auth, audit: audit}
}

// POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	token, exp, err := h.auth.Login(c.Request.Context(), req.Password)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"token": token, "expires_at": exp.UTC().Format(time.RFC3339)})
}

// GET /api/admin/storage/audit
func (h *AdminHandler) StorageAudit(c *gin.Context) {
	report, err := h.audit.Run(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, report)
}
