package pagination

import "fmt"

const (
	DefaultLimit = 20
	MaxLimit     = 500
)

// Params holds normalized paging parameters for list commands.
type Params struct {
	Limit  int
	Offset int
}

// New clamps limit into (0, MaxLimit], substituting DefaultLimit for
// non-positive values, and floors offset at zero.
func New(limit, offset int) Params {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}

// Response wraps one page of results.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	return &Response{
		Data:    data,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.HasNext(total),
	}
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset+p.Limit < total
}

func (p Params) HasPrevious() bool {
	return p.Offset > 0
}

func (p Params) NextOffset() int {
	return p.Offset + p.Limit
}

// PreviousOffset returns 0 if the result would be negative.
func (p Params) PreviousOffset() int {
	prev := p.Offset - p.Limit
	if prev < 0 {
		return 0
	}
	return prev
}

// Summary describes the page for terminal output, e.g.
// "showing 21-40 of 57 (next: --offset 40)".
func (p Params) Summary(shown, total int) string {
	if shown == 0 {
		return fmt.Sprintf("showing 0 of %d", total)
	}
	s := fmt.Sprintf("showing %d-%d of %d", p.Offset+1, p.Offset+shown, total)
	if p.HasNext(total) {
		s += fmt.Sprintf(" (next: --offset %d)", p.NextOffset())
	}
	return s
}
