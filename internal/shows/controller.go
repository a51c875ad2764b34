package shows

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListShows handles GET /api/v1/shows
func (c *Controller) ListShows(ctx *gin.Context) {
	result, err := c.service.ListShows(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list shows",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Shows retrieved successfully",
		"data": gin.H{
			"shows": result,
			"count": len(result),
		},
	})
}

// GetShow handles GET /api/v1/shows/:id
func (c *Controller) GetShow(ctx *gin.Context) {
	showID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid show ID"})
		return
	}

	show, err := c.service.GetShow(ctx.Request.Context(), showID)
	if err != nil {
		if errors.Is(err, ErrShowNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Show not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get show",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Show retrieved successfully",
		"data":    show,
	})
}

// GetPerformance handles GET /api/v1/performances/:id
func (c *Controller) GetPerformance(ctx *gin.Context) {
	performanceID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid performance ID"})
		return
	}

	performance, err := c.service.GetPerformance(ctx.Request.Context(), performanceID)
	if err != nil {
		if errors.Is(err, ErrPerformanceNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Performance not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get performance",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Performance retrieved successfully",
		"data":    performance,
	})
}

// GetAvailability handles GET /api/v1/performances/:id/availability
func (c *Controller) GetAvailability(ctx *gin.Context) {
	performanceID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid performance ID"})
		return
	}

	info, err := c.service.GetAvailability(ctx.Request.Context(), performanceID)
	if err != nil {
		if errors.Is(err, ErrPerformanceNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Performance not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get availability",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Availability retrieved successfully",
		"data":    info,
	})
}
