package pagination

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	MinPageSize     = 1
)

var ErrInvalidParams = errors.New("invalid pagination parameters")

// Params holds validated pagination parameters
type Params struct {
	Page     int
	PageSize int
}

// New validates page/pageSize and caps pageSize at maxPageSize
func New(page, pageSize, maxPageSize int) (Params, error) {
	if page < DefaultPage {
		return Params{}, fmt.Errorf("%w: page must be >= %d", ErrInvalidParams, DefaultPage)
	}
	if pageSize < MinPageSize {
		return Params{}, fmt.Errorf("%w: page_size must be >= %d", ErrInvalidParams, MinPageSize)
	}
	if maxPageSize < MinPageSize {
		maxPageSize = MaxPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return Params{Page: page, PageSize: pageSize}, nil
}

// Offset is the index of the first item on the page. Only meaningful when
// PastEnd reports false; huge pages overflow int.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PastEnd reports whether the page starts at or beyond total items.
func (p Params) PastEnd(total int64) bool {
	if total <= 0 {
		return true
	}
	return int64(p.Page-1) > (total-1)/int64(p.PageSize)
}

// Bounds returns the half-open [start, end) window of the page over total items,
// clamped so that pages past the end yield an empty window.
func (p Params) Bounds(total int) (start, end int) {
	if p.PastEnd(int64(total)) {
		return total, total
	}
	start = p.Offset()
	end = start + min(p.PageSize, total-start)
	return start, end
}

// TotalPages is ceil(total/pageSize), 0 for an empty result
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Page is a single page of a filtered result set
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Data:       items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: TotalPages(total, p.PageSize),
	}
}

// Map converts the items of a page, keeping the counters
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Data))
	for _, item := range p.Data {
		out = append(out, fn(item))
	}
	return Page[U]{
		Data:       out,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

// Parse extracts page/page_size from query parameters. Missing values fall back to
// defaults; malformed or out-of-domain values are reported as ErrInvalidParams.
func Parse(c *gin.Context, defaultPageSize, maxPageSize int) (Params, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	if err != nil {
		return Params{}, fmt.Errorf("%w: page must be an integer", ErrInvalidParams)
	}
	if defaultPageSize < MinPageSize {
		defaultPageSize = DefaultPageSize
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil {
		return Params{}, fmt.Errorf("%w: page_size must be an integer", ErrInvalidParams)
	}
	return New(page, pageSize, maxPageSize)
}
