// Package exclusion holds the set of user IDs an owner must never be shown.
package exclusion

import "slices"

// Set is an owner's exclusion set. The zero value is empty and usable.
type Set struct {
	ids map[string]struct{}
}

// New creates a set containing ids.
func New(ids ...string) Set {
	s := Set{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts ids. Empty strings are ignored.
func (s *Set) Add(ids ...string) {
	if s.ids == nil {
		s.ids = make(map[string]struct{}, len(ids))
	}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
}

// Contains reports whether id is excluded.
func (s Set) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of excluded IDs.
func (s Set) Len() int { return len(s.ids) }

// Filter returns ids not in the set, preserving order and dropping duplicates.
func (s Set) Filter(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.Contains(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// IDs returns the excluded IDs sorted.
func (s Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Options tunes which relations an exclusion set covers.
type Options struct {
	// SuperLikedBy also excludes users who super-liked the owner.
	SuperLikedBy bool
}

// Option mutates Options.
type Option func(*Options)

// WithSuperLikedBy excludes received super-likes, for views that surface admirers elsewhere.
func WithSuperLikedBy() Option {
	return func(o *Options) { o.SuperLikedBy = true }
}

// Apply folds opts into Options.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
