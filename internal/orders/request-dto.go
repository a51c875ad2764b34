package orders

// CheckoutRequest is the cart submitted by the web tier
type CheckoutRequest struct {
	CustomerName  string         `json:"customer_name" binding:"required,min=2,max=100"`
	CustomerEmail string         `json:"customer_email" binding:"required,email"`
	CouponCode    string         `json:"coupon_code"`
	Items         []CheckoutItem `json:"items" binding:"required,min=1,dive"`
}

// CheckoutItem is one performance's worth of requested tickets
type CheckoutItem struct {
	PerformanceID    string `json:"performance_id" binding:"required,uuid"`
	Quantity         int    `json:"quantity" binding:"required,min=1"`
	WheelchairAccess bool   `json:"wheelchair_access"`
}
