package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsreasoner/opsreasoner/pkg/checkpoint"
	"github.com/opsreasoner/opsreasoner/pkg/pendingaction"
)

// respondError maps service-layer errors to HTTP error responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pendingaction.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "pending action not found"})
	case errors.Is(err, checkpoint.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "unknown thread_id"})
	case errors.Is(err, pendingaction.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	default:
		slog.Error("unexpected service error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}
