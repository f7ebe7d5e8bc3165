package handlers

import (
	"net/http"
	"time"

	"bistro-api/models"
	"bistro-api/payment"

	"github.com/gin-gonic/gin"
)

type PaymentIntentRequest struct {
	Price *float64 `json:"price" binding:"required"`
}

type SavePaymentRequest struct {
	Email         string    `json:"email" binding:"required"`
	TransactionID string    `json:"transactionId"`
	Price         float64   `json:"price"`
	Quantity      int       `json:"quantity"`
	Date          time.Time `json:"date"`
	CartItems     []string  `json:"cartItems"`
	MenuItems     []string  `json:"menuItems"`
	ItemNames     []string  `json:"itemNames"`
	Status        string    `json:"status"`
}

// CreatePaymentIntent asks the payment provider for a card intent covering price dollars
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount := payment.MinorUnits(*req.Price)
	logger.Infof("payment intent requested for %d cents", amount)

	intent, err := h.payments.CreateIntent(c.Request.Context(), amount, payment.CurrencyUSD)
	if err != nil {
		logger.Errorf("create payment intent: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment intent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}

// SavePayment records a payment the client has already confirmed
func (h *Handler) SavePayment(c *gin.Context) {
	var req SavePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := models.Payment{
		Email:         req.Email,
		TransactionID: req.TransactionID,
		Price:         req.Price,
		Quantity:      req.Quantity,
		Date:          req.Date,
		CartItems:     req.CartItems,
		MenuItems:     req.MenuItems,
		ItemNames:     req.ItemNames,
		Status:        req.Status,
	}
	result, err := h.store.InsertPayment(c.Request.Context(), &p)
	if err != nil {
		storeFailure(c, "save payment", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
