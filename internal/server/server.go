// Package server exposes the command, query, and streaming surface
// over HTTP. Commands and queries are plain JSON endpoints; real-time
// notifications flow over a server-sent events stream that also
// drives the connected-users roster.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/domain/activeusers"
	"github.com/askwave/askwave/internal/executor"
	"github.com/askwave/askwave/internal/hub"
	"github.com/askwave/askwave/internal/readmodel"
	"github.com/askwave/askwave/internal/workflow"
)

// Server wires the HTTP surface to the executor, workflows, read
// model, and notification hub.
type Server struct {
	exec      *executor.Executor
	workflows *workflow.Workflows
	model     *readmodel.Model
	hub       *hub.Hub

	// activeUsersID names the single roster partition this server
	// reports connections into.
	activeUsersID string

	router *gin.Engine
}

// New builds the server and its routes.
func New(exec *executor.Executor, workflows *workflow.Workflows, model *readmodel.Model, h *hub.Hub, activeUsersID string) *Server {
	s := &Server{
		exec:          exec,
		workflows:     workflows,
		model:         model,
		hub:           h,
		activeUsersID: activeUsersID,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/questions", s.listQuestions)
		api.POST("/questions", s.createQuestion)
		api.GET("/questions/:id", s.getQuestion)
		api.PUT("/questions/:id", s.updateQuestion)
		api.DELETE("/questions/:id", s.deleteQuestion)
		api.POST("/questions/:id/display", s.startDisplay)
		api.DELETE("/questions/:id/display", s.stopDisplay)
		api.POST("/questions/:id/responses", s.addResponse)
		api.POST("/questions/:id/move", s.moveQuestion)

		api.GET("/groups", s.listGroups)
		api.POST("/groups", s.createGroup)
		api.GET("/groups/:id", s.getGroup)
		api.PUT("/groups/:id", s.renameGroup)
		api.DELETE("/groups/:id", s.deleteGroup)
		api.GET("/groups/:id/active", s.activeQuestion)
		api.POST("/groups/:id/order", s.changeOrder)

		api.GET("/codes/:code", s.groupByCode)
		api.GET("/codes/:code/active", s.activeQuestionByCode)

		api.GET("/connections", s.listConnections)
		api.PUT("/connections/:id/name", s.renameConnection)

		api.GET("/stream", s.stream)
	}

	s.router = r
	return s
}

// Handler returns the HTTP handler for serving.
func (s *Server) Handler() http.Handler { return s.router }

// EnsureActiveUsers creates the roster partition if it does not exist
// yet. The command is an accepted no-op when it already does.
func (s *Server) EnsureActiveUsers(ctx context.Context) error {
	_, err := s.exec.Execute(ctx, activeusers.CreateActiveUsers{ActiveUsersID: s.activeUsersID})
	if err != nil {
		return fmt.Errorf("ensure active users roster: %w", err)
	}
	return nil
}

// requestLogger logs one line per request through slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// writeError maps command errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case domain.IsInvariantViolation(err), domain.IsConflict(err):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
