package orders

import (
	"errors"
	"net/http"

	"showtix/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
	log     *logger.Logger
}

func NewController(service Service) *Controller {
	return &Controller{service: service, log: logger.GetDefault()}
}

// Checkout handles POST /api/v1/checkout
func (c *Controller) Checkout(ctx *gin.Context) {
	var req CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	response, err := c.service.Checkout(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientCapacity):
			c.log.LogCapacityRejected(ctx.Request.Context(), err.Error())
			ctx.JSON(http.StatusConflict, gin.H{
				"error":   "Not enough seats available",
				"details": err.Error(),
			})
		case errors.Is(err, ErrPerformanceNotOnSale), errors.Is(err, ErrPerformanceMissing),
			errors.Is(err, ErrInvalidCoupon), errors.Is(err, ErrCouponRaceLost):
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Checkout rejected",
				"details": err.Error(),
			})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Checkout failed",
				"details": err.Error(),
			})
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Checkout completed successfully",
		"data":    response,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func (c *Controller) GetOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	detail, err := c.service.GetOrder(ctx.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get order",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    detail,
	})
}
