package model

// CheckoutRequest starts a subscription checkout for the caller's organization
type CheckoutRequest struct {
	PriceID string `json:"price_id" binding:"required"`
}

// CheckoutResponse carries the hosted checkout session back to the client
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}
