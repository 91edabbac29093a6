package domain

import (
	"strconv"
	"strings"
)

// ID is used across domain entities.
type ID int64

const (
	BookingsPageSize = 10
	ToursPageSize    = 9
)

// Pagination carries paging params and totals.
type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Offset is the row offset of the current page.
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// NewPagination resolves a raw page parameter against a total the way a "get page"
// paginator does: garbage or values below 1 give the first page, values past the end
// give the last page. An empty result still has one (empty) page.
func NewPagination(rawPage string, pageSize, total int) Pagination {
	if pageSize <= 0 {
		pageSize = BookingsPageSize
	}
	if total < 0 {
		total = 0
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}

	page, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil || page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	return Pagination{
		Page:        page,
		PageSize:    pageSize,
		Total:       total,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrevious: page > 1,
	}
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID    ID     `json:"user_id"`
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}
