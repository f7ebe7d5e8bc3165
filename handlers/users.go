package handlers

import (
	"errors"
	"net/http"

	"bistro-api/middleware"
	"bistro-api/models"
	"bistro-api/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	PhotoURL string `json:"photoURL"`
	Password string `json:"password"`
}

// ListUsers returns every user record
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		storeFailure(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser saves a user on first sign-in. A repeat sign-in for the same
// email writes nothing but still gets an answer.
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at most 72 bytes"})
			return
		}
		if err != nil {
			logger.Errorf("%s %s: hash password: %v", c.Request.Method, c.Request.URL.Path, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.PasswordHash = string(hash)
	}

	result, created, err := h.store.InsertUserIfAbsent(c.Request.Context(), &user)
	if err != nil {
		storeFailure(c, "create user", err)
		return
	}
	if !created {
		logger.Infof("user %s already exists", req.Email)
		c.JSON(http.StatusOK, gin.H{"message": "user already exists", "insertedId": nil})
		return
	}
	c.JSON(http.StatusOK, result)
}

// MakeAdmin grants the admin role to the user with the given id
func (h *Handler) MakeAdmin(c *gin.Context) {
	result, err := h.store.SetUserRole(c.Request.Context(), c.Param("id"), models.RoleAdmin)
	if err != nil {
		storeFailure(c, "update user role", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AdminStatus tells the caller whether their own account is an admin
func (h *Handler) AdminStatus(c *gin.Context) {
	email := c.Param("email")
	if !middleware.EmailMatch(c, email) {
		return
	}

	user, err := h.store.FindUserByEmail(c.Request.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"admin": false})
		return
	}
	if err != nil {
		storeFailure(c, "look up user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": user.IsAdmin()})
}
