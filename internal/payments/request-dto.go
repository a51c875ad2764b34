package payments

// WebhookRequest is the provider callback body. It deliberately carries only
// the transaction reference; the outcome is fetched from the provider so a
// forged body cannot finalize an order.
type WebhookRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

// MockCompleteRequest finishes a mock payment with a chosen outcome
type MockCompleteRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=success failure cancel"`
}
