package api

import (
	"net/http"
	"strconv"
)

const (
	defaultPage    = 1
	defaultPerPage = 50
	maxPerPage     = 500
)

// PaginationParams holds parsed pagination query parameters.
type PaginationParams struct {
	Page    int
	PerPage int
}

// PaginationMeta contains pagination metadata for list responses.
type PaginationMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// PaginatedResponse wraps a list response with pagination metadata.
type PaginatedResponse struct {
	Data       interface{}    `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// PaginationRequested reports whether the client sent page or per_page
func PaginationRequested(r *http.Request) bool {
	q := r.URL.Query()
	return q.Get("page") != "" || q.Get("per_page") != ""
}

// ParsePagination extracts pagination parameters from the request.
// Defaults: page=1, per_page=50. Maximum per_page is 500.
func ParsePagination(r *http.Request) PaginationParams {
	p := PaginationParams{
		Page:    defaultPage,
		PerPage: defaultPerPage,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}

	if v := r.URL.Query().Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.PerPage = min(n, maxPerPage)
		}
	}

	return p
}

// Offset returns the index of the first item on the current page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// TotalPages calculates the total number of pages for a given total count.
func (p PaginationParams) TotalPages(total int) int {
	if p.PerPage <= 0 {
		return 0
	}
	return (total + p.PerPage - 1) / p.PerPage
}

// Paginate slices an in-memory list and wraps it with metadata. Pages past
// the end yield an empty, non-nil data slice.
func Paginate[T any](items []T, p PaginationParams) PaginatedResponse {
	start := min(p.Offset(), len(items))
	end := min(start+p.PerPage, len(items))
	page := make([]T, end-start)
	copy(page, items[start:end])

	return PaginatedResponse{
		Data: page,
		Pagination: PaginationMeta{
			Page:       p.Page,
			PerPage:    p.PerPage,
			Total:      len(items),
			TotalPages: p.TotalPages(len(items)),
		},
	}
}
