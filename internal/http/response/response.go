package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError picks the status from the error's apierr code. Internal
// errors are logged by the caller and rendered without their cause.
func RespondAPIError(c *gin.Context, err error) {
	code := apierr.CodeOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(apierr.HTTPStatus(code), ErrorEnvelope{
		Error: APIError{
			Message: apierr.MessageOf(err),
			Code:    string(code),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
