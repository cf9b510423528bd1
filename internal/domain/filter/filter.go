// Package filter describes attribute filters for candidate searches
// independently of the query language of the store.
package filter

import (
	"errors"
	"fmt"
)

// MaxConditions bounds each of the must and must-not groups.
const MaxConditions = 32

// Expression ANDs its must conditions and excludes anything matching a must-not condition.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// Must returns the required conditions.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the excluding conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression matches everything.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.mustNot) == 0
}

// Condition is either a tag match against any of several values or a numeric range.
type Condition struct {
	key   string
	anyOf []string
	rng   *Range
}

// Key returns the index field alias.
func (c Condition) Key() string { return c.key }

// Values returns the accepted tag values.
func (c Condition) Values() []string { return c.anyOf }

// Range returns the numeric range, nil for tag conditions.
func (c Condition) Range() *Range { return c.rng }

// IsMatch reports whether this is a tag condition.
func (c Condition) IsMatch() bool { return len(c.anyOf) > 0 }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rng != nil }

// Bound is one end of a Range.
type Bound struct {
	Value     float64
	Exclusive bool
}

// Range is a numeric interval. A nil bound is unbounded.
type Range struct {
	Lower *Bound
	Upper *Bound
}

func (r Range) validate() error {
	switch {
	case r.Lower == nil && r.Upper == nil:
		return errors.New("range needs at least one bound")
	case r.Lower != nil && r.Upper != nil && r.Lower.Value > r.Upper.Value:
		return fmt.Errorf("range lower bound %v exceeds upper bound %v", r.Lower.Value, r.Upper.Value)
	}
	return nil
}

// Builder accumulates conditions. The first invalid condition is reported by Build.
type Builder struct {
	expr Expression
	err  error
}

// Where starts an empty expression.
func Where() *Builder { return &Builder{} }

// Tag requires key to equal any of values.
func (b *Builder) Tag(key string, values ...string) *Builder {
	if c, ok := b.match(key, values); ok {
		b.expr.must = append(b.expr.must, c)
	}
	return b
}

// NotTag excludes documents whose key equals any of values.
func (b *Builder) NotTag(key string, values ...string) *Builder {
	if c, ok := b.match(key, values); ok {
		b.expr.mustNot = append(b.expr.mustNot, c)
	}
	return b
}

// AtLeast requires key >= v.
func (b *Builder) AtLeast(key string, v float64) *Builder {
	return b.InRange(key, Range{Lower: &Bound{Value: v}})
}

// Between requires lo <= key <= hi.
func (b *Builder) Between(key string, lo, hi float64) *Builder {
	return b.InRange(key, Range{Lower: &Bound{Value: lo}, Upper: &Bound{Value: hi}})
}

// InRange requires key to fall within r.
func (b *Builder) InRange(key string, r Range) *Builder {
	if b.err != nil {
		return b
	}
	if key == "" {
		b.err = errors.New("filter key is required")
		return b
	}
	if err := r.validate(); err != nil {
		b.err = fmt.Errorf("%s: %w", key, err)
		return b
	}
	b.expr.must = append(b.expr.must, Condition{key: key, rng: &r})
	return b
}

// Build returns the expression or the first error encountered.
func (b *Builder) Build() (Expression, error) {
	if b.err != nil {
		return Expression{}, b.err
	}
	if len(b.expr.must) > MaxConditions || len(b.expr.mustNot) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d per group)", MaxConditions)
	}
	return b.expr, nil
}

func (b *Builder) match(key string, values []string) (Condition, bool) {
	if b.err != nil {
		return Condition{}, false
	}
	if key == "" {
		b.err = errors.New("filter key is required")
		return Condition{}, false
	}
	if len(values) == 0 {
		b.err = fmt.Errorf("%s: at least one value is required", key)
		return Condition{}, false
	}
	for _, v := range values {
		if v == "" {
			b.err = fmt.Errorf("%s: empty value", key)
			return Condition{}, false
		}
	}
	return Condition{key: key, anyOf: append([]string(nil), values...)}, true
}
