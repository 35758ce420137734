package handler

import (
	"context"
	"net/http"
	"time"

	"go-weave/internal/api/dto"
	"go-weave/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	queue ports.IngestQueue
}

func NewHealthHandler(db Pinger, queue ports.IngestQueue) *HealthHandler {
	return &HealthHandler{db: db, queue: queue}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable", Error: "database unreachable"})
		return
	}

	depth, err := h.queue.Depth(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable", Error: "ingest queue unreachable"})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", IngestQueueDepth: &depth})
}
