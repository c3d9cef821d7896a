package policies

import "time"

// Policy is an issued insurance policy.
type Policy struct {
	ID           string    `json:"id"`
	PolicyNumber string    `json:"policy_number"`
	CustomerID   string    `json:"customer_id"`
	Product      string    `json:"product"`
	Premium      float64   `json:"premium"`
	Status       string    `json:"status"`
	EffectiveAt  time.Time `json:"effective_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
