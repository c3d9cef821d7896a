package deletion

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a delete request. Transitions are
// one-way: pending may become approved or denied, both terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// Audit action tags written by the workflow.
const (
	ActionRequestCreate  = "DELETE_REQUEST_CREATE"
	ActionRequestApprove = "DELETE_REQUEST_APPROVE"
	ActionRequestDeny    = "DELETE_REQUEST_DENY"
	ActionPurgeAll       = "DELETE_ALL_DATA"
)

// DeleteRequest is a proposal to remove one domain entity. Requests are
// kept forever; decided requests are never mutated again.
type DeleteRequest struct {
	ID          uuid.UUID  `json:"id"`
	EntityType  string     `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	EntityLabel string     `json:"entity_label,omitempty"`
	RequestedBy int64      `json:"requested_by"`
	Status      Status     `json:"status"`
	DecidedBy   *int64     `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Pending reports whether the request is still undecided.
func (r DeleteRequest) Pending() bool {
	return r.Status == StatusPending
}

// ListFilters narrows List results.
type ListFilters struct {
	Status     Status
	EntityType string
	Limit      int
	Offset     int
}
