package routes

import (
	"bistro-api/handlers"
	"bistro-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Auth) {
	verified := auth.VerifyIdentity()
	admin := auth.VerifyAdmin()

	// ── Public routes ──────────────────────────────────────────────
	r.GET("/", handlers.Welcome)
	r.GET("/health", h.Health)
	r.POST("/jwt", h.IssueToken)
	r.GET("/menu", h.ListMenu)
	r.POST("/users", h.CreateUser)
	r.GET("/users", h.ListUsers)

	// ── Signed-in routes ───────────────────────────────────────────
	r.GET("/users/admin/:email", verified, h.AdminStatus)
	r.GET("/carts", verified, h.ListCart)
	r.POST("/carts", h.AddCartItem)
	r.DELETE("/carts/:id", h.DeleteCartItem)
	r.POST("/create-payment-intent", verified, h.CreatePaymentIntent)
	r.POST("/payments", h.SavePayment)

	// ── Admin routes ───────────────────────────────────────────────
	r.PATCH("/users/admin/:id", verified, admin, h.MakeAdmin)
	r.POST("/menu", verified, admin, h.AddMenuItem)
	r.DELETE("/menu/:id", verified, admin, h.DeleteMenuItem)
}
