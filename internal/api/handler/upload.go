package handler

import (
	"net/http"

	"go-weave/internal/api/dto"
	"go-weave/internal/core/ports"
	"go-weave/internal/service"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service  service.UploadService
	identity ports.IdentityProvider
}

func NewUploadHandler(svc service.UploadService, identity ports.IdentityProvider) *UploadHandler {
	return &UploadHandler{service: svc, identity: identity}
}

func (h *UploadHandler) RegisterUpload(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}

	var req dto.RegisterUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.service.Register(c.Request.Context(), owner, req.FileName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, view)
}

func (h *UploadHandler) ListUploads(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}

	views, err := h.service.List(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *UploadHandler) GetUpload(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.service.Get(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
