package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/kailas-cloud/matchfeed/internal/domain/dna"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// LookingForEveryone disables the gender preference filter.
const LookingForEveryone = "everyone"

// MaxInterests bounds the number of interest tags on a profile.
const MaxInterests = 64

// Location is where a user lives.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city,omitempty"`
}

// User is the profile slice the scoring engine reads.
type User struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Gender     string         `json:"gender,omitempty"`
	LookingFor string         `json:"looking_for,omitempty"`
	Location   Location       `json:"location"`
	Interests  []string       `json:"interests,omitempty"`
	DNA        *dna.Vector    `json:"dna,omitempty"`
	Answers    []dna.Category `json:"answers,omitempty"`
	CreatedAt  int64          `json:"created_at"` // unix millis
}

// Validate checks the fields the index and scorer depend on.
func (u *User) Validate() error {
	if err := ValidateID(u.ID); err != nil {
		return err
	}
	if strings.TrimSpace(u.Location.Country) == "" {
		return fmt.Errorf("%w: location.country is required", ErrInvalidInput)
	}
	if len(u.Interests) > MaxInterests {
		return fmt.Errorf("%w: too many interests (max %d)", ErrInvalidInput, MaxInterests)
	}
	return nil
}

// ValidateID checks a user ID, which becomes part of Redis keys.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if len(id) > 64 {
		return fmt.Errorf("%w: id too long (max 64)", ErrInvalidInput)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("%w: id must be alphanumeric with underscores and hyphens", ErrInvalidInput)
	}
	return nil
}

// Vector returns the stored DNA (clamped) or computes it from the answers.
func (u *User) Vector() dna.Vector {
	if u.DNA != nil {
		return u.DNA.Clamp()
	}
	return dna.ComputeCategories(u.Answers)
}

// PreferredGender reports the gender filter for candidate sampling.
func (u *User) PreferredGender() (string, bool) {
	g := strings.TrimSpace(u.LookingFor)
	if g == "" || strings.EqualFold(g, LookingForEveryone) {
		return "", false
	}
	return g, true
}

// NormalizedInterests returns lowercased, trimmed, deduplicated and sorted interests.
func (u *User) NormalizedInterests() []string {
	out := make([]string, 0, len(u.Interests))
	for _, in := range u.Interests {
		v := strings.ToLower(strings.TrimSpace(in))
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SampleQuery selects candidate profiles.
type SampleQuery struct {
	Country      string
	City         string // optional, same-city views
	Gender       string // optional, owner's preference
	CreatedAfter int64  // optional, unix millis
	ExcludeIDs   []string
	Limit        int
	// Newest returns the most recent profiles first instead of a random window.
	Newest bool
}

// MaxExcludeIDs caps the IDs a sample query asks the store to skip. IDs past
// the cap are still dropped after reading.
const MaxExcludeIDs = 500

// Exclude adds ids to the store-side exclusion list, skipping blanks and
// duplicates, up to MaxExcludeIDs.
func (q *SampleQuery) Exclude(ids ...string) {
	seen := make(map[string]struct{}, len(q.ExcludeIDs)+len(ids))
	for _, id := range q.ExcludeIDs {
		seen[id] = struct{}{}
	}
	for _, id := range ids {
		if len(q.ExcludeIDs) >= MaxExcludeIDs {
			return
		}
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		q.ExcludeIDs = append(q.ExcludeIDs, id)
	}
}

// SampleFor builds the base candidate query for owner: same country, never the
// owner, restricted to the preferred gender when one is set.
func SampleFor(owner *User, limit int) SampleQuery {
	q := SampleQuery{
		Country:    owner.Location.Country,
		ExcludeIDs: []string{owner.ID},
		Limit:      limit,
	}
	if g, ok := owner.PreferredGender(); ok {
		q.Gender = g
	}
	return q
}
