package audit

import (
	"context"
	"fmt"
	"time"
)

// Entry is one immutable audit record as viewed in the timeline.
type Entry struct {
	ID       int64          `json:"id"`
	ActorID  int64          `json:"actor_id"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entity_id"`
	Details  map[string]any `json:"details,omitempty"`
	At       time.Time      `json:"at"`
}

// TimelineFilters narrows the timeline query.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	ActorID  int64
	Entity   string
	Action   string
	Page     int
	PageSize int
}

// PagingInfo describes the returned window.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
}

// Result wraps timeline rows with paging information.
type Result struct {
	Rows   []Entry    `json:"rows"`
	Paging PagingInfo `json:"paging"`
}

// Repository reads audit_logs. There is deliberately no write access here:
// appends go through shared.AuditLogger and nothing ever updates or deletes.
type Repository interface {
	Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error)
}

// Service coordinates audit timeline reads.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of audit entries, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.repo.Window(ctx, filters, pageSize+1, offset)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	return Result{
		Rows:   rows,
		Paging: PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext},
	}, nil
}
