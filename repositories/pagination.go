package repositories

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (p Page) normalized() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (p Page) offset() int {
	n := p.normalized()
	return (n.Page - 1) * n.Limit
}

// Pagination is returned alongside list results.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

func newPagination(p Page, total int64) Pagination {
	n := p.normalized()
	pages := total / int64(n.Limit)
	if total%int64(n.Limit) != 0 {
		pages++
	}
	return Pagination{Total: total, Page: n.Page, Limit: n.Limit, Pages: pages}
}
