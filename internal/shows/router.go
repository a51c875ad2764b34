package shows

import (
	"github.com/gin-gonic/gin"
)

// Router handles show-related routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new show router
func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes configures show and performance routes
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	showRoutes := rg.Group("/shows")
	{
		showRoutes.GET("", r.controller.ListShows)
		showRoutes.GET("/:id", r.controller.GetShow)
	}

	performanceRoutes := rg.Group("/performances")
	{
		performanceRoutes.GET("/:id", r.controller.GetPerformance)
		performanceRoutes.GET("/:id/availability", r.controller.GetAvailability)
	}
}
