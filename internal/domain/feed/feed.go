// Package feed defines candidate pages, views and swipe-feed batches.
package feed

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kailas-cloud/matchfeed/internal/domain"
)

// View selects which candidate slice a page comes from.
type View string

const (
	// ViewTop serves the ranking pool with a live fallback.
	ViewTop View = "top"
	// ViewNearby serves live same-city candidates.
	ViewNearby View = "nearby"
	// ViewNew serves recently created profiles.
	ViewNew View = "new"
)

// Views lists all supported views.
var Views = []View{ViewTop, ViewNearby, ViewNew}

// ParseView validates a view name. Empty means top.
func ParseView(s string) (View, error) {
	if s == "" {
		return ViewTop, nil
	}
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownView, s)
}

// Source names the tier a candidate came from.
type Source string

const (
	SourcePool Source = "pool"
	SourceLive Source = "live"
)

// Candidate is a scored candidate ID.
type Candidate struct {
	ID     string `json:"id"`
	Score  int    `json:"score"`
	Source Source `json:"source,omitempty"`
}

// Page is one page of a scored view.
type Page struct {
	View       View        `json:"view"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Items      []Candidate `json:"items"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	HasMore    bool        `json:"has_more"`
	Exhausted  bool        `json:"exhausted,omitempty"`
	Cached     bool        `json:"-"`
}

// Paginate cuts page (1-based) of size limit out of an ordered snapshot.
// Items within the page are sorted by descending score, ties by ID.
func Paginate(view View, snapshot []Candidate, page, limit int) Page {
	p := Page{View: view, Page: page, Limit: limit, Total: len(snapshot), Items: []Candidate{}}
	if limit <= 0 {
		return p
	}
	p.TotalPages = (p.Total + limit - 1) / limit
	p.Exhausted = p.Total == 0

	skip := (page - 1) * limit
	if page < 1 || skip >= p.Total {
		return p
	}

	end := min(skip+limit, p.Total)
	p.Items = append(p.Items, snapshot[skip:end]...)
	SortByScore(p.Items)
	p.HasMore = skip+len(p.Items) < p.Total
	return p
}

// SortByScore orders candidates by descending score, ties by ascending ID.
func SortByScore(items []Candidate) {
	slices.SortStableFunc(items, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Status is the outcome of a swipe-feed read.
type Status string

const (
	// StatusOK means at least one card was returned.
	StatusOK Status = "ok"
	// StatusRetry means nothing is ready yet; a refill is pending or the store is down.
	StatusRetry Status = "retry"
	// StatusExhausted means the last refill found no candidates.
	StatusExhausted Status = "exhausted"
)

// Batch is the result of popping the swipe feed.
type Batch struct {
	IDs    []string `json:"ids"`
	Status Status   `json:"status"`
}
