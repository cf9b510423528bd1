package db

import "github.com/kailas-cloud/matchfeed/internal/domain/filter"

// ListQuery is the input for a paginated FT.SEARCH.
type ListQuery struct {
	Index    string
	Filters  filter.Expression
	Offset   int
	Limit    int
	Fields   []string
	SortBy   string // must be a SORTABLE field
	SortDesc bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
