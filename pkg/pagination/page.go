package pagination

import (
	"fmt"

	"github.com/narwhalmedia/classifieds/pkg/errors"
)

// Page is one window of an ordered result set. TotalRecords is counted with
// the same predicate, in the same read snapshot, as Items.
type Page[T any] struct {
	Items         []T    `json:"items"`
	TotalRecords  int64  `json:"total_records"`
	PageNumber    int    `json:"page_number"`
	PageSize      int    `json:"page_size"`
	TotalPages    int    `json:"total_pages"`
	HasPrevious   bool   `json:"has_previous"`
	HasNext       bool   `json:"has_next"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// Request is a validated page window.
type Request struct {
	Number int
	Size   int
}

// NewRequest validates a page window. A zero size falls back to
// defaultSize; sizes above maxSize are rejected.
func NewRequest(number, size, defaultSize, maxSize int) (Request, error) {
	if size == 0 {
		size = defaultSize
	}
	if number < 1 {
		return Request{}, errors.BadRequest(fmt.Sprintf("page number must be at least 1, got %d", number))
	}
	if size < 1 {
		return Request{}, errors.BadRequest(fmt.Sprintf("page size must be positive, got %d", size))
	}
	if maxSize > 0 && size > maxSize {
		return Request{}, errors.BadRequest(fmt.Sprintf("page size must not exceed %d", maxSize))
	}
	return Request{Number: number, Size: size}, nil
}

// Offset returns the number of rows before this window.
func (r Request) Offset() int {
	return (r.Number - 1) * r.Size
}

// NewPage derives the page metadata from the total count.
func NewPage[T any](items []T, total int64, req Request) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Items:        items,
		TotalRecords: total,
		PageNumber:   req.Number,
		PageSize:     req.Size,
		TotalPages:   totalPages,
		HasPrevious:  req.Number > 1,
		HasNext:      req.Number < totalPages,
	}
}

// Map converts the items of a page, keeping its metadata.
func Map[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return &Page[U]{
		Items:         out,
		TotalRecords:  p.TotalRecords,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
		TotalPages:    p.TotalPages,
		HasPrevious:   p.HasPrevious,
		HasNext:       p.HasNext,
		NextPageToken: p.NextPageToken,
	}
}

// Policy holds the page size limits of a query service and the optional
// encoder used to issue next-page tokens.
type Policy struct {
	DefaultSize int
	MaxSize     int
	Tokens      *CursorEncoder
}

// Resolve validates a page window. A non-empty token overrides number and
// size, and must have been issued for the same fingerprint.
func (p Policy) Resolve(number, size int, token, fingerprint string) (Request, error) {
	if token != "" {
		if p.Tokens == nil {
			return Request{}, errors.BadRequest("page tokens are not enabled")
		}
		c, err := p.Tokens.Decode(token, fingerprint)
		if err != nil {
			return Request{}, errors.Wrap(errors.ErrorTypeBadRequest, "invalid page token", err)
		}
		number, size = c.Page, c.Size
	}
	return NewRequest(number, size, p.DefaultSize, p.MaxSize)
}

// Finish attaches the next-page token when tokens are enabled.
func Finish[T any](p Policy, page *Page[T], fingerprint string) (*Page[T], error) {
	if err := AttachNextToken(p.Tokens, page, fingerprint); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeInternal, "failed to issue page token", err)
	}
	return page, nil
}
