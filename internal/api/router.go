// Package api wires the HTTP routes onto gin.
package api

import (
	"time"

	"go-weave/internal/api/handler"
	"go-weave/internal/log"
	"go-weave/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Workflows  *handler.WorkflowHandler
	Executions *handler.ExecutionHandler
	Uploads    *handler.UploadHandler
	Health     *handler.HealthHandler
}

// NewRouter mounts /health and /metrics unauthenticated and everything under
// /api/v1 behind requireAuth.
func NewRouter(h Handlers, requireAuth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), metrics.GinMiddleware())

	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1", requireAuth)
	{
		api.POST("/workflows", h.Workflows.CreateWorkflow)
		api.GET("/workflows", h.Workflows.ListWorkflows)
		api.GET("/workflows/:id", h.Workflows.GetWorkflow)
		api.PATCH("/workflows/:id", h.Workflows.UpdateWorkflow)
		api.DELETE("/workflows/:id", h.Workflows.DeleteWorkflow)
		api.PUT("/workflows/:id/graph", h.Workflows.SaveGraph)

		api.POST("/workflows/:id/execute", h.Executions.ExecuteWorkflow)
		api.GET("/workflows/:id/executions", h.Executions.ListExecutions)
		api.GET("/executions/:id/progress", h.Executions.GetProgress)

		api.POST("/uploads", h.Uploads.RegisterUpload)
		api.GET("/uploads", h.Uploads.ListUploads)
		api.GET("/uploads/:id", h.Uploads.GetUpload)
	}

	return router
}

// RequestLogger replaces gin's default access log with logrus entries.
func RequestLogger() gin.HandlerFunc {
	logger := log.GetLogger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		})
		if userID, ok := c.Get("user_id"); ok {
			entry = entry.WithField("user_id", userID)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
	}
}
