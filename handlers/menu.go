package handlers

import (
	"net/http"

	"bistro-api/models"

	"github.com/gin-gonic/gin"
)

type CreateMenuItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Recipe   string  `json:"recipe"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// ListMenu returns the whole menu (public)
func (h *Handler) ListMenu(c *gin.Context) {
	items, err := h.store.ListMenu(c.Request.Context())
	if err != nil {
		storeFailure(c, "list menu", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddMenuItem adds an item to the menu (admin only)
func (h *Handler) AddMenuItem(c *gin.Context) {
	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := models.MenuItem{
		Name:     req.Name,
		Recipe:   req.Recipe,
		Image:    req.Image,
		Category: req.Category,
		Price:    req.Price,
	}
	result, err := h.store.InsertMenuItem(c.Request.Context(), &item)
	if err != nil {
		storeFailure(c, "add menu item", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteMenuItem removes a menu item (admin only)
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	result, err := h.store.DeleteMenuItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeFailure(c, "delete menu item", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
