// Package handlers implements the HTTP endpoints. Each handler performs one
// store operation or one payment-intent request and echoes the result.
package handlers

import (
	"net/http"

	"bistro-api/middleware"
	"bistro-api/payment"
	"bistro-api/store"

	"github.com/gin-gonic/gin"
	logging "github.com/op/go-logging"
)

var logger = logging.MustGetLogger("handlers")

// Handler carries the process-scoped collaborators every endpoint needs.
type Handler struct {
	store    store.Store
	auth     *middleware.Auth
	payments payment.IntentCreator
}

func New(s store.Store, auth *middleware.Auth, payments payment.IntentCreator) *Handler {
	return &Handler{store: s, auth: auth, payments: payments}
}

// storeFailure logs err and answers 500; the cause stays out of the response.
func storeFailure(c *gin.Context, action string, err error) {
	logger.Errorf("%s %s: %s: %v", c.Request.Method, c.Request.URL.Path, action, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
}
