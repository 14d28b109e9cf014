package repository

import "gorm.io/gorm"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page selects a window of a listing. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

// Normalize applies the defaults: page 1 and limit 10. Limits above MaxLimit
// are clamped.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// scope applies LIMIT/OFFSET for the normalized page.
func (p Page) scope(db *gorm.DB) *gorm.DB {
	p = p.Normalize()
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// Pagination is the metadata returned alongside every paginated listing.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// NewPagination computes the page count as ceil(total/limit).
func NewPagination(total int64, p Page) Pagination {
	p = p.Normalize()
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{Total: total, Page: p.Page, Limit: p.Limit, Pages: pages}
}
