package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListJobs handles GET /api/v1/jobs?status=&type=&limit=
func (c *Controller) ListJobs(ctx *gin.Context) {
	status := Status(ctx.Query("status"))
	jobType := Type(ctx.Query("type"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))

	jobList, err := c.service.ListJobs(ctx.Request.Context(), status, jobType, limit)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to list jobs",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Jobs retrieved successfully",
		"data": gin.H{
			"jobs":  jobList,
			"count": len(jobList),
		},
	})
}

// GetJob handles GET /api/v1/jobs/:id
func (c *Controller) GetJob(ctx *gin.Context) {
	jobID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	job, err := c.service.GetJob(ctx.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get job",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Job retrieved successfully",
		"data":    job,
	})
}
