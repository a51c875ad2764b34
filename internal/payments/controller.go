package payments

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

// HandleWebhook handles POST /api/v1/payments/webhook
func (c *Controller) HandleWebhook(ctx *gin.Context) {
	var req WebhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid webhook body",
			"details": err.Error(),
		})
		return
	}

	err := c.service.HandleWebhook(ctx.Request.Context(), req.TransactionID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown transaction"})
			return
		}
		// Non-2xx makes the provider redeliver, which is safe: processing
		// is idempotent.
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Webhook processing failed",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Webhook processed"})
}

// CompleteMockPayment handles POST /api/v1/payments/mock/:transaction_id/complete
func (c *Controller) CompleteMockPayment(ctx *gin.Context) {
	transactionID := ctx.Param("transaction_id")

	var req MockCompleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	err := c.service.CompleteMockPayment(ctx.Request.Context(), transactionID, req.Outcome)
	if err != nil {
		switch {
		case errors.Is(err, ErrMockNotEnabled):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Mock payments are not enabled"})
		case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrPaymentNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown transaction"})
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Could not complete mock payment",
				"details": err.Error(),
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Mock payment completed"})
}

// GetPaymentForOrder handles GET /api/v1/payments/order/:order_id
func (c *Controller) GetPaymentForOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("order_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	payment, err := c.service.GetPaymentForOrder(ctx.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "No payment for order"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get payment",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Payment retrieved successfully",
		"data":    payment,
	})
}
