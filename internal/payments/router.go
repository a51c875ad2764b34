package payments

import (
	"github.com/gin-gonic/gin"
)

// Router handles payment routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new payment router
func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes configures payment routes
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	paymentRoutes := rg.Group("/payments")
	{
		paymentRoutes.POST("/webhook", r.controller.HandleWebhook)
		paymentRoutes.POST("/mock/:transaction_id/complete", r.controller.CompleteMockPayment)
		paymentRoutes.GET("/order/:order_id", r.controller.GetPaymentForOrder)
	}
}
