package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/http/response"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
)

// pathUUID parses a uuid route param, answering 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondAPIError(c, apierr.Validationf("request", "invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondAPIError(c, apierr.New(apierr.CodeValidation, "request", "invalid json body: "+err.Error(), err))
		return false
	}
	return true
}
