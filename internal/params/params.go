package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

// URL: /api/products?page=2&limit=12
// → ParsePagination() → Pagination{Limit:12, Page:2, Offset:12}
// → store returns one page + total count
// → ComputeMeta(total) → fills TotalPages, HasNext, etc.
type Pagination struct {
	Limit      int  `json:"limit"`       // items per page
	Offset     int  `json:"offset"`      // items skipped
	Page       int  `json:"page"`        // current page number, 1-based
	Total      int  `json:"total"`       // total matching items
	TotalPages int  `json:"total_pages"` // ceil(Total / Limit)
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// New normalizes page and limit. Anything below 1 falls back to the
// defaults (page 1, limit 12) and limit is capped at MaxLimit.
func New(page, limit int) Pagination {
	p := Pagination{Limit: DefaultLimit, Page: 1}
	switch {
	case limit <= 0:
	case limit > MaxLimit:
		p.Limit = MaxLimit
	default:
		p.Limit = limit
	}
	if page > 0 {
		p.Page = page
	}
	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// ParsePagination parses ?limit=...&page=... safely. Keys are case sensitive;
// unparsable values are treated as absent.
func ParsePagination(q url.Values) Pagination {
	return New(atoi(q.Get("page")), atoi(q.Get("limit")))
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ComputeMeta updates pagination after fetching total count.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.Limit) < total
}
