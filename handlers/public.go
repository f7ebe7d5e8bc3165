package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "Bistro Boss Restaurant API"

// Welcome is the plain-text landing response
func Welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to Bistro Boss Restaurant Server")
}

// Health reports whether the data store answers a ping
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.Warningf("health check: store ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "service": serviceName})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
}
