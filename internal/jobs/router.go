package jobs

import (
	"github.com/gin-gonic/gin"
)

// Router handles retry-queue inspection routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new job router
func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes configures job routes. The caller is expected to mount this
// group behind auth middleware; these endpoints are operator-only.
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	jobRoutes := rg.Group("/jobs")
	{
		jobRoutes.GET("", r.controller.ListJobs)
		jobRoutes.GET("/:id", r.controller.GetJob)
	}
}
