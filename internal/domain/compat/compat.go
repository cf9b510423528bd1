// Package compat scores pairwise compatibility between two profiles.
package compat

import (
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/dna"
)

const (
	// DNAWeight scales the mean axis similarity.
	DNAWeight = 0.7
	// CityBonus is added when both users live in the same city.
	CityBonus = 15
	// InterestBonus is added per shared interest, capped at MaxInterestBonus.
	InterestBonus    = 3
	MaxInterestBonus = 15

	MinScore = 0
	MaxScore = 100
)

// Detail is the breakdown of a score.
type Detail struct {
	Score           int      `json:"score"`
	DNA             float64  `json:"dna"`
	CityBonus       int      `json:"city_bonus"`
	InterestBonus   int      `json:"interest_bonus"`
	SharedInterests []string `json:"shared_interests,omitempty"`
	SameCity        bool     `json:"same_city"`
}

// Score returns the compatibility of a and b in [0,100]. Nil input scores 0.
func Score(a, b *domain.User) int {
	return Breakdown(a, b).Score
}

// Breakdown returns the score together with each component.
func Breakdown(a, b *domain.User) Detail {
	if a == nil || b == nil {
		return Detail{}
	}

	d := Detail{DNA: dnaSimilarity(a.Vector(), b.Vector()) * DNAWeight}

	if sameCity(a.Location.City, b.Location.City) {
		d.SameCity = true
		d.CityBonus = CityBonus
	}

	d.SharedInterests = shared(a.NormalizedInterests(), b.NormalizedInterests())
	d.InterestBonus = min(InterestBonus*len(d.SharedInterests), MaxInterestBonus)

	total := math.Round(d.DNA + float64(d.CityBonus+d.InterestBonus))
	d.Score = max(MinScore, min(MaxScore, int(total)))
	return d
}

// dnaSimilarity is the mean of 100-|diff| across all axes.
func dnaSimilarity(a, b dna.Vector) float64 {
	sum := 0
	for _, axis := range dna.Axes {
		diff := a.Get(axis) - b.Get(axis)
		if diff < 0 {
			diff = -diff
		}
		sum += 100 - diff
	}
	return float64(sum) / float64(len(dna.Axes))
}

func sameCity(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

// shared intersects two sorted, deduplicated slices.
func shared(a, b []string) []string {
	var out []string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Fingerprint hashes the scoring inputs of a user. Users with equal
// fingerprints score identically against any third user.
func Fingerprint(u *domain.User) string {
	if u == nil {
		return "0"
	}
	v := u.Vector()
	var sb strings.Builder
	for _, axis := range dna.Axes {
		sb.WriteString(strconv.Itoa(v.Get(axis)))
		sb.WriteByte('.')
	}
	sb.WriteString(strings.ToLower(strings.TrimSpace(u.Location.City)))
	sb.WriteByte('|')
	sb.WriteString(strings.Join(u.NormalizedInterests(), ","))
	return strconv.FormatUint(xxhash.Sum64String(sb.String()), 16)
}
