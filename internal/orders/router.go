package orders

import (
	"github.com/gin-gonic/gin"
)

// Router handles checkout and order routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new order router
func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes configures checkout and order routes
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkout", r.controller.Checkout)

	orderRoutes := rg.Group("/orders")
	{
		orderRoutes.GET("/:id", r.controller.GetOrder)
	}
}
