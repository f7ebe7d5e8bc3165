package handlers

import (
	"net/http"

	"bistro-api/middleware"
	"bistro-api/models"

	"github.com/gin-gonic/gin"
)

type AddCartItemRequest struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Image      string  `json:"image"`
	Price      float64 `json:"price"`
	UserEmail  string  `json:"userEmail" binding:"required"`
}

// ListCart returns the caller's cart. Without an email there is nothing to list.
func (h *Handler) ListCart(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusOK, []models.CartItem{})
		return
	}
	if !middleware.EmailMatch(c, email) {
		return
	}

	items, err := h.store.ListCartByEmail(c.Request.Context(), email)
	if err != nil {
		storeFailure(c, "list cart", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddCartItem puts a menu item snapshot into a cart
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := models.CartItem{
		MenuItemID: req.MenuItemID,
		Name:       req.Name,
		Image:      req.Image,
		Price:      req.Price,
		UserEmail:  req.UserEmail,
	}
	result, err := h.store.InsertCartItem(c.Request.Context(), &item)
	if err != nil {
		storeFailure(c, "add cart item", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteCartItem removes one cart entry by id
func (h *Handler) DeleteCartItem(c *gin.Context) {
	result, err := h.store.DeleteCartItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeFailure(c, "delete cart item", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
