package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/kiosk-backend/internal/http/response"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
	"github.com/yungbote/kiosk-backend/internal/platform/gcp"
	"github.com/yungbote/kiosk-backend/internal/services"
)

type UploadHandler struct {
	uploads services.UploadService
}

func NewUploadHandler(uploads services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// POST /api/uploads/presign
func (h *UploadHandler) Presign(c *gin.Context) {
	var req services.UploadRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.uploads.Presign(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/uploads (multipart "file", optional "folder")
func (h *UploadHandler) Upload(c *gin.Context) {
	const op = "upload.multipart"
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondAPIError(c, apierr.New(apierr.CodeValidation, op, "multipart field \"file\" is required", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondAPIError(c, apierr.New(apierr.CodeValidation, op, "unreadable upload", err))
		return
	}
	defer f.Close()

	contentType := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		if guessed := gcp.ContentTypeForKey(fh.Filename); guessed != "" {
			contentType = guessed
		}
	}
	blob, err := h.uploads.Upload(c.Request.Context(), services.UploadRequest{
		FileName: fh.Filename,
		FileType: contentType,
		Folder:   c.PostForm("folder"),
	}, f)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, blob)
}
