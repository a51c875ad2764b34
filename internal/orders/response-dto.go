package orders

// CheckoutResponse tells the caller where the money goes next: either a
// provider payment URL to redirect to, or payment_queued when the provider
// was unreachable and the retry queue took over.
type CheckoutResponse struct {
	OrderID        string  `json:"order_id"`
	Status         string  `json:"status"`
	TotalAmount    float64 `json:"total_amount"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
	PaymentURL     string  `json:"payment_url,omitempty"`
	PaymentQueued  bool    `json:"payment_queued,omitempty"`
}

// OrderDetailResponse is the confirmation-page view of an order
type OrderDetailResponse struct {
	Order   *Order       `json:"order"`
	Tickets []TicketInfo `json:"tickets,omitempty"`
}

// TicketInfo mirrors a materialized ticket without importing the tickets
// package (which depends on this one)
type TicketInfo struct {
	ID            string `json:"id"`
	LineItemID    string `json:"line_item_id"`
	PerformanceID string `json:"performance_id"`
	RowIndex      int    `json:"row_index"`
	SeatNumber    int    `json:"seat_number"`
	QRToken       string `json:"qr_token"`
}
