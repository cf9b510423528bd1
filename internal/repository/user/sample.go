package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/matchfeed/internal/db"
	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/filter"
)

func sampleFilters(q domain.SampleQuery) (filter.Expression, error) {
	b := filter.Where().Tag(fieldCountry, q.Country)
	if q.City != "" {
		b.Tag(fieldCity, q.City)
	}
	if q.Gender != "" {
		b.Tag(fieldGender, q.Gender)
	}
	if q.CreatedAfter > 0 {
		b.AtLeast(fieldCreatedAt, float64(q.CreatedAfter))
	}
	if len(q.ExcludeIDs) > 0 {
		b.NotTag(fieldID, q.ExcludeIDs...)
	}
	return b.Build()
}

// Sample returns up to q.Limit matching profiles. Without Newest it reads a
// window at a random offset so repeated samples spread across the population.
func (r *Repo) Sample(ctx context.Context, q domain.SampleQuery) ([]*domain.User, error) {
	if q.Country == "" {
		return nil, fmt.Errorf("%w: country is required for sampling", domain.ErrInvalidInput)
	}
	if q.Limit <= 0 {
		return nil, nil
	}

	expr, err := sampleFilters(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	lq := &db.ListQuery{
		Index:   indexName,
		Filters: expr,
		Limit:   q.Limit,
		Fields:  []string{"$"},
	}

	if q.Newest {
		lq.SortBy = fieldCreatedAt
		lq.SortDesc = true
	} else {
		total, err := r.store.SearchCount(ctx, indexName, expr)
		if err != nil {
			return nil, fmt.Errorf("count candidates: %w", err)
		}
		if total == 0 {
			return nil, nil
		}
		if total > q.Limit {
			lq.Offset = r.offset(total - q.Limit + 1)
		}
	}

	result, err := r.store.SearchList(ctx, lq)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	out := make([]*domain.User, 0, len(result.Entries))
	for _, entry := range result.Entries {
		doc := entry.Fields["$"]
		if doc == "" {
			continue
		}
		var u domain.User
		if err := json.Unmarshal([]byte(doc), &u); err != nil {
			continue
		}
		if u.ID == "" {
			continue
		}
		out = append(out, &u)
	}
	return out, nil
}
