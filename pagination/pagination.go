// Package pagination windows a lazily evaluated result sequence by offset and
// limit and works out the requests for the neighbouring pages.
package pagination

import "github.com/cockroachdb/errors"

const (
	DefaultLimit  = 20
	DefaultOffset = 0
)

var (
	// ErrInvalidParameter is returned for a malformed page request, such as a
	// non-positive limit.
	ErrInvalidParameter = errors.New("invalid page parameter")

	// ErrPageNotFound is returned when the offset lies beyond the available results.
	ErrPageNotFound = errors.New("no results at this page")
)

// Sequence is a countable, sliceable view over an index's match list.
// Count and Slice may block on I/O. A nil element returned from Slice marks a
// stale index entry whose backing object no longer exists.
type Sequence[H any] interface {
	Count() (int, error)
	Slice(start, end int) ([]*H, error)
}

type Request struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func NewRequest() Request {
	return Request{Limit: DefaultLimit, Offset: DefaultOffset}
}

type Result[H any] struct {
	Items      []*H
	TotalCount int
	Previous   *Request
	Next       *Request
}

// Paginate returns the page of sequence described by request.
//
// Stale entries in the window are dropped without fetching replacements, so a
// page can hold fewer than Limit items even when later pages are not empty.
// Errors from Count and Slice are returned unchanged.
func Paginate[H any](sequence Sequence[H], request Request) (*Result[H], error) {
	if request.Limit <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "limit must be positive, got %d", request.Limit)
	}
	if request.Offset < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "offset must not be negative, got %d", request.Offset)
	}

	total, err := sequence.Count()
	if err != nil {
		return nil, err
	}

	if request.Offset >= total && total > 0 {
		return nil, errors.Wrapf(ErrPageNotFound, "offset %d, total %d", request.Offset, total)
	}

	items := make([]*H, 0, min(request.Limit, total))
	if total > 0 {
		// offset < total here, so the end cannot overflow
		end := request.Offset + min(request.Limit, total-request.Offset)
		window, err := sequence.Slice(request.Offset, end)
		if err != nil {
			return nil, err
		}
		if len(window) > request.Limit {
			window = window[:request.Limit]
		}
		for _, item := range window {
			if item == nil {
				continue
			}
			items = append(items, item)
		}
	}

	return &Result[H]{
		Items:      items,
		TotalCount: total,
		Previous:   previous(request),
		Next:       next(request, total),
	}, nil
}

func previous(request Request) *Request {
	if request.Offset-request.Limit < 0 {
		return nil
	}
	return &Request{Limit: request.Limit, Offset: request.Offset - request.Limit}
}

func next(request Request, total int) *Request {
	if request.Limit >= total-request.Offset {
		return nil
	}
	return &Request{Limit: request.Limit, Offset: request.Offset + request.Limit}
}
