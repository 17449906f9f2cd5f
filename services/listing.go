package services

// ListQuery carries the common list parameters: pagination, a status
// filter (comma-separated statuses are accepted), and a free-text search
// over number, title, and contract number.
type ListQuery struct {
	Page     int
	Limit    int
	Statuses []string
	Search   string
}

// Pagination mirrors the envelope every list endpoint returns.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// Normalize clamps page and limit to sane values.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

// Offset returns the row offset for the normalized query.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

func paginationFor(q ListQuery, total int64) Pagination {
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return Pagination{
		CurrentPage:  q.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: q.Limit,
	}
}
