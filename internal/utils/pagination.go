package utils

import (
	"slices"

	"github.com/gofiber/fiber/v2"
)

const defaultPageSize = 25

var pageSizes = []int{10, 25, 50, 100}

// PaginationParams holds the list query: page, page size, free-text search
// and listing direction ("asc" oldest first, "desc" newest first).
type PaginationParams struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Search   string `json:"search"`
	OrderDir string `json:"order_dir"`
}

// Descending reports whether the newest records should come first.
func (p PaginationParams) Descending() bool { return p.OrderDir == "desc" }

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        int   `json:"from"`
	To          int   `json:"to"`
	HasMore     bool  `json:"has_more"`
}

type PaginatedResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Data       interface{}    `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// GetPaginationParams reads page, limit, search and order_dir. Unknown page
// sizes fall back to 25 and anything but "desc" lists oldest first.
func GetPaginationParams(c *fiber.Ctx) PaginationParams {
	params := PaginationParams{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", defaultPageSize),
		Search:   c.Query("search"),
		OrderDir: c.Query("order_dir", "asc"),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if !slices.Contains(pageSizes, params.Limit) {
		params.Limit = defaultPageSize
	}
	if params.OrderDir != "desc" {
		params.OrderDir = "asc"
	}
	return params
}

func CalculatePagination(page, limit int, total int64) PaginationMeta {
	page = max(page, 1)
	if limit < 1 {
		limit = defaultPageSize
	}

	meta := PaginationMeta{
		CurrentPage: page,
		PerPage:     limit,
		Total:       total,
		LastPage:    int((total + int64(limit) - 1) / int64(limit)),
	}
	if total > 0 {
		meta.From = GetOffset(page, limit) + 1
		meta.To = min(page*limit, int(total))
	}
	meta.HasMore = page < meta.LastPage
	return meta
}

func PaginatedResponseBuilder(c *fiber.Ctx, message string, data interface{}, pagination PaginationMeta) error {
	return c.JSON(PaginatedResponse{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// GetOffset is the SQL OFFSET for a 1-based page.
func GetOffset(page, limit int) int {
	return (page - 1) * limit
}

// Paginate returns the page of items selected by params along with its
// metadata. Items are expected in insertion order; a descending listing is
// reversed before slicing.
func Paginate[T any](items []T, params PaginationParams) ([]T, PaginationMeta) {
	if params.Descending() {
		items = slices.Clone(items)
		slices.Reverse(items)
	}

	meta := CalculatePagination(params.Page, params.Limit, int64(len(items)))
	start := GetOffset(meta.CurrentPage, meta.PerPage)
	if start >= len(items) {
		return []T{}, meta
	}
	return items[start:min(start+meta.PerPage, len(items))], meta
}
