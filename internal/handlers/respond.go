package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/GunarsK-portfolio/user-service/internal/logging"
)

// AuthEventRecorder counts auth attempts by outcome.
type AuthEventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAuthEvent(string, string) {}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// logAndRespondError logs err with the request id and sends message, never
// err itself, to the client.
func logAndRespondError(c *gin.Context, logger *slog.Logger, status int, err error, message string) {
	logger.ErrorContext(c.Request.Context(), message,
		"error", err,
		"request_id", logging.RequestID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
	respondError(c, status, message)
}

func orDefaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
