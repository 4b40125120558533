package response

import (
	"time"

	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
)

type (
	Success struct {
		Success    bool        `json:"success" example:"true"`
		Data       any         `json:"data"`
		Message    string      `json:"message"`
		Timestamp  time.Time   `json:"timestamp"`
		Pagination *Pagination `json:"pagination,omitempty"`
		Query      *Query      `json:"query,omitempty"`
	}

	Error struct {
		Success   bool      `json:"success" example:"false"`
		Error     string    `json:"error" example:"image not found"`
		Code      errs.Code `json:"code" example:"IMAGE_NOT_FOUND"`
		Timestamp time.Time `json:"timestamp"`
	}

	Pagination struct {
		Total      int64 `json:"total"`
		Count      int   `json:"count"`
		Limit      int   `json:"limit"`
		Offset     int   `json:"offset"`
		HasMore    bool  `json:"hasMore"`
		NextOffset *int  `json:"nextOffset"`
	}

	Query struct {
		Search *string `json:"search"`
		Order  string  `json:"order"`
	}
)

func NewSuccess(data any, message string) Success {
	return Success{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func NewError(code errs.Code, message string) Error {
	return Error{
		Error:     message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	}
}

// NewPagination computes hasMore and nextOffset for a rank window; search
// results are a single bounded page.
func NewPagination(total int64, count, limit, offset int, search bool) *Pagination {
	p := &Pagination{
		Total:  total,
		Count:  count,
		Limit:  limit,
		Offset: offset,
	}

	if search {
		p.Total = int64(count)
		return p
	}

	if int64(offset+limit) < total {
		next := offset + limit
		p.HasMore = true
		p.NextOffset = &next
	}

	return p
}
