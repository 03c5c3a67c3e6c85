// Package paging accumulates list resources that are served one page at a
// time through items_per_page / start_index query parameters.
package paging

import "context"

const (
	// DefaultPageSize is used when the caller passes a non-positive size.
	DefaultPageSize = 100
	// MaxStartIndex bounds the loop against servers that never signal the
	// last page. Reaching it ends collection without an error.
	MaxStartIndex = 10000
)

// Page is one slice of a paginated resource.
type Page[T any] struct {
	Items        []T `json:"items"`
	TotalResults int `json:"total_results"`
}

// FetchFunc loads the page of pageSize items beginning at startIndex.
type FetchFunc[T any] func(ctx context.Context, pageSize, startIndex int) (Page[T], error)

// Collect requests pages sequentially from startIndex 0 and concatenates
// their items. It stops when a page is short, when the accumulated count
// reaches total_results, or when startIndex passes MaxStartIndex. The first
// fetch error is returned as is.
//
// A missing or zero total_results is treated as unknown, so only a short
// page (or the safety bound) ends the loop in that case.
func Collect[T any](ctx context.Context, pageSize int, fetch FetchFunc[T]) ([]T, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var all []T
	for start := 0; start <= MaxStartIndex; start += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := fetch(ctx, pageSize, start)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if len(page.Items) < pageSize {
			break
		}
		if page.TotalResults > 0 && len(all) >= page.TotalResults {
			break
		}
	}

	if all == nil {
		all = []T{}
	}
	return all, nil
}
