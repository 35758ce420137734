package handler

import (
	"net/http"
	"strconv"

	"go-weave/internal/api/dto"
	"go-weave/internal/core/ports"
	"go-weave/internal/service"

	"github.com/gin-gonic/gin"
)

type WorkflowHandler struct {
	service  service.WorkflowService
	identity ports.IdentityProvider
}

func NewWorkflowHandler(svc service.WorkflowService, identity ports.IdentityProvider) *WorkflowHandler {
	return &WorkflowHandler{service: svc, identity: identity}
}

func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}

	var req dto.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	workflow, err := h.service.CreateWorkflow(c.Request.Context(), owner, service.CreateWorkflowInput{
		Name:        req.Name,
		Description: req.Description,
		IsTemplate:  req.IsTemplate,
		Category:    req.Category,
		Metadata:    req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, workflow)
}

// ListWorkflows honours ?templates=true.
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}

	templatesOnly := false
	if raw := c.Query("templates"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid templates flag"})
			return
		}
		templatesOnly = parsed
	}

	workflows, err := h.service.ListWorkflows(c.Request.Context(), owner, templatesOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workflows)
}

func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	workflow, err := h.service.GetWorkflow(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workflow)
}

func (h *WorkflowHandler) UpdateWorkflow(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	workflow, err := h.service.UpdateWorkflow(c.Request.Context(), id, owner, req.Patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workflow)
}

func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteWorkflow(c.Request.Context(), id, owner); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveGraph replaces the whole graph and returns the temp id / label map.
func (h *WorkflowHandler) SaveGraph(c *gin.Context) {
	owner, ok := callerID(c, h.identity)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SaveGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	nodes, edges := req.Inputs()
	result, err := h.service.SaveGraph(c.Request.Context(), id, owner, nodes, edges)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSaveGraphResponse(result))
}
