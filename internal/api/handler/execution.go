package handler

import (
	"errors"
	"io"
	"net/http"

	"go-weave/internal/api/dto"
	"go-weave/internal/core/ports"
	"go-weave/internal/service"

	"github.com/gin-gonic/gin"
)

type ExecutionHandler struct {
	service  service.ExecutionService
	identity ports.IdentityProvider
}

func NewExecutionHandler(svc service.ExecutionService, identity ports.IdentityProvider) *ExecutionHandler {
	return &ExecutionHandler{service: svc, identity: identity}
}

// ExecuteWorkflow answers with the engine's handle as soon as the run is
// accepted. The body is optional.
func (h *ExecutionHandler) ExecuteWorkflow(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ExecuteWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	result, err := h.service.Execute(c.Request.Context(), id, owner, req.InputData, req.Parameters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

func (h *ExecutionHandler) ListExecutions(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	executions, err := h.service.ListExecutions(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, executions)
}

func (h *ExecutionHandler) GetProgress(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	progress, err := h.service.Progress(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
