package finperiods

import "time"

// Period is a closed financial reporting period with derived snapshots.
type Period struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	OpenedAt  time.Time `json:"opened_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
