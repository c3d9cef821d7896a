package deletion

type createRequestPayload struct {
	EntityType  string `json:"entity_type" validate:"required,max=100"`
	EntityID    string `json:"entity_id" validate:"required,max=100"`
	EntityLabel string `json:"entity_label,omitempty" validate:"omitempty,max=200"`
	Reason      string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type denyRequestPayload struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}
