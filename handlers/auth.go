package handlers

import (
	"errors"
	"net/http"

	"bistro-api/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var (
	dummyHash, _  = bcrypt.GenerateFromPassword([]byte("bistro-no-such-account"), bcrypt.DefaultCost)
	checkPassword = bcrypt.CompareHashAndPassword
)

type TokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// IssueToken checks the caller's credentials and returns a signed identity token
func (h *Handler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		storeFailure(c, "look up user", err)
		return
	}

	// every rejection runs exactly one bcrypt comparison, whether or not the account exists
	hash := dummyHash
	known := err == nil && user.PasswordHash != ""
	if known {
		hash = []byte(user.PasswordHash)
	}
	if err := checkPassword(hash, []byte(req.Password)); err != nil || !known {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.auth.IssueToken(user.Email)
	if err != nil {
		logger.Errorf("issue token for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
