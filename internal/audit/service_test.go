package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	entries []Entry
	limit   int
	offset  int
}

func (s *stubRepo) Window(_ context.Context, _ TimelineFilters, limit, offset int) ([]Entry, error) {
	s.limit = limit
	s.offset = offset
	end := offset + limit
	if offset >= len(s.entries) {
		return nil, nil
	}
	if end > len(s.entries) {
		end = len(s.entries)
	}
	return s.entries[offset:end], nil
}

func entries(n int) []Entry {
	out := make([]Entry, n)
	for i := range out {
		out[i] = Entry{ID: int64(n - i), Action: "DELETE_REQUEST_CREATE", At: time.Now()}
	}
	return out
}

func TestTimelinePaging(t *testing.T) {
	repo := &stubRepo{entries: entries(25)}
	service := NewService(repo)

	res, err := service.Timeline(context.Background(), TimelineFilters{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 20)
	require.True(t, res.Paging.HasNext)
	require.Equal(t, 1, res.Paging.Page)
	require.Equal(t, 21, repo.limit, "one extra row probes for a next page")

	res, err = service.Timeline(context.Background(), TimelineFilters{Page: 2})
	require.NoError(t, err)
	require.Len(t, res.Rows, 5)
	require.False(t, res.Paging.HasNext)
	require.Equal(t, 20, repo.offset)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubRepo{entries: entries(100)}
	service := NewService(repo)

	res, err := service.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	require.Len(t, res.Rows, 50)
	require.Equal(t, 50, res.Paging.PageSize)

	res, err = service.Timeline(context.Background(), TimelineFilters{PageSize: -3})
	require.NoError(t, err)
	require.Equal(t, 20, res.Paging.PageSize)
}
