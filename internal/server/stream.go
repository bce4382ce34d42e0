package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/domain/activeusers"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/hub"
)

// streamBuffer is the per-subscriber notification buffer. A client
// that falls this far behind loses notifications and re-syncs on its
// next query.
const streamBuffer = 64

// stream is the server-sent events endpoint.
//
// ?role=admin joins the administrative audience; ?code=XXXXXX joins
// one group's participant audience by unique code; both may be given.
// ?name= labels the connection in the roster. The connection id is
// assigned here and announced as the first event so the client can
// rename itself later.
func (s *Server) stream(c *gin.Context) {
	var groups []string
	if c.Query("role") == "admin" {
		groups = append(groups, hub.AdminGroup)
	}
	if code := c.Query("code"); code != "" {
		if !group.ValidCode(code) {
			writeError(c, domain.NewValidationError("invalid unique code %q", code))
			return
		}
		if _, ok := s.model.GroupByCode(code); !ok {
			writeError(c, domain.NewNotFoundError("no group carries code %s", code))
			return
		}
		groups = append(groups, hub.CodeGroup(code))
	}
	if len(groups) == 0 {
		writeError(c, domain.NewValidationError("stream requires role=admin or a group code"))
		return
	}

	connectionID := uuid.Must(uuid.NewV7()).String()
	sub := s.hub.Subscribe(streamBuffer, groups...)
	defer sub.Close()

	ctx := c.Request.Context()
	if _, err := s.exec.Execute(ctx, activeusers.UserConnectedCommand{
		ActiveUsersID: s.activeUsersID,
		ConnectionID:  connectionID,
		Name:          c.Query("name"),
	}); err != nil {
		writeError(c, err)
		return
	}
	defer func() {
		// The request context is gone once the client drops; record
		// the disconnect on a fresh one.
		_, err := s.exec.Execute(context.WithoutCancel(ctx), activeusers.UserDisconnectedCommand{
			ActiveUsersID: s.activeUsersID,
			ConnectionID:  connectionID,
		})
		if err != nil {
			slog.Warn("record disconnect failed",
				"connection_id", connectionID,
				"error", err,
			)
		}
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	c.SSEvent("Connected", gin.H{"connectionId": connectionID})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case n, ok := <-sub.C():
			if !ok {
				return false
			}
			c.SSEvent(n.Name, n.Payload)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
