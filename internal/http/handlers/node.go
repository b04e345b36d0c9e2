package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/http/response"
	"github.com/yungbote/kiosk-backend/internal/services"
)

type NodeHandler struct {
	nodes services.NodeService
}

func NewNodeHandler(nodes services.NodeService) *NodeHandler {
	return &NodeHandler{nodes: nodes}
}

// GET /api/nodes
func (h *NodeHandler) ListRoots(c *gin.Context) {
	roots, err := h.nodes.Roots(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"nodes": roots})
}

// POST /api/nodes
func (h *NodeHandler) Create(c *gin.Context) {
	var in kiosk.NodeInput
	if !bindJSON(c, &in) {
		return
	}
	n, err := h.nodes.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"node": n})
}

// GET /api/nodes/:id
func (h *NodeHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	n, err := h.nodes.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"node": n})
}

// PUT /api/nodes/:id
func (h *NodeHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var p kiosk.NodePatch
	if !bindJSON(c, &p) {
		return
	}
	n, err := h.nodes.Update(c.Request.Context(), id, p)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"node": n})
}

// DELETE /api/nodes/:id
func (h *NodeHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.nodes.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PATCH /api/nodes/:id/slideshow-images
func (h *NodeHandler) RemoveSlideshowImage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ImageID uuid.UUID `json:"image_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.nodes.RemoveSlideshowImage(c.Request.Context(), id, req.ImageID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"node": n})
}
