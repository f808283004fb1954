package store

// PaginationParams contains offset pagination request parameters.
type PaginationParams struct {
	Page    int // 1-based page number (defaults to 1)
	PerPage int // Items per page (defaults to 20 with a maximum of 100)
}

// Page contains one page of items plus paging metadata.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// DefaultPaginationParams returns sensible defaults.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Page:    1,
		PerPage: 20,
	}
}

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = 20
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
}

// Offset returns the SQL OFFSET for these parameters.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// NewPage assembles a page from items and the total row count.
func NewPage[T any](items []T, total int, params PaginationParams) Page[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + params.PerPage - 1) / params.PerPage
	}

	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1 && total > 0,
	}
}
