package payments

import "time"

// Payment is a premium payment against a policy.
type Payment struct {
	ID         string    `json:"id"`
	PolicyID   string    `json:"policy_id"`
	Amount     float64   `json:"amount"`
	Method     string    `json:"method"`
	ReceivedBy int64     `json:"received_by"`
	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Receipt is the record derived from a payment.
type Receipt struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"payment_id"`
	Number    string    `json:"number"`
	IssuedAt  time.Time `json:"issued_at"`
}
