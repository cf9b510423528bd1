// Package dna derives a five-axis personality vector from tagged quiz answers.
package dna

import (
	"math"
	"strings"
)

// Axis is one dimension of the personality vector.
type Axis string

const (
	// AxisLogic is the analytical dimension.
	AxisLogic Axis = "logic"
	// AxisEmotion is the empathic dimension.
	AxisEmotion Axis = "emotion"
	// AxisEnergy is the social/activity dimension.
	AxisEnergy Axis = "energy"
	// AxisCreativity is the imaginative dimension.
	AxisCreativity Axis = "creativity"
	// AxisDiscipline is the structured/goal-driven dimension.
	AxisDiscipline Axis = "discipline"
)

// Axes lists every axis in canonical order.
var Axes = [...]Axis{AxisLogic, AxisEmotion, AxisEnergy, AxisCreativity, AxisDiscipline}

const (
	// DefaultValue is the axis value used when no trait evidence exists.
	DefaultValue = 50
	// MinEvidenceValue and MaxEvidenceValue bound axes computed from evidence.
	MinEvidenceValue = 10
	MaxEvidenceValue = 95
)

// Vector is a DNA profile. Each axis is an integer in [0,100].
type Vector struct {
	Logic      int `json:"logic"`
	Emotion    int `json:"emotion"`
	Energy     int `json:"energy"`
	Creativity int `json:"creativity"`
	Discipline int `json:"discipline"`
}

// Default returns the no-evidence vector (all axes 50).
func Default() Vector {
	return Vector{
		Logic:      DefaultValue,
		Emotion:    DefaultValue,
		Energy:     DefaultValue,
		Creativity: DefaultValue,
		Discipline: DefaultValue,
	}
}

// Get returns the value of a single axis, 0 for an unknown axis.
func (v Vector) Get(a Axis) int {
	switch a {
	case AxisLogic:
		return v.Logic
	case AxisEmotion:
		return v.Emotion
	case AxisEnergy:
		return v.Energy
	case AxisCreativity:
		return v.Creativity
	case AxisDiscipline:
		return v.Discipline
	default:
		return 0
	}
}

func (v *Vector) set(a Axis, val int) {
	switch a {
	case AxisLogic:
		v.Logic = val
	case AxisEmotion:
		v.Emotion = val
	case AxisEnergy:
		v.Energy = val
	case AxisCreativity:
		v.Creativity = val
	case AxisDiscipline:
		v.Discipline = val
	}
}

// Clamp bounds every axis to [0,100]. Used on stored vectors that may be malformed.
func (v Vector) Clamp() Vector {
	out := v
	for _, a := range Axes {
		out.set(a, clamp(v.Get(a), 0, 100))
	}
	return out
}

// Answer is a single quiz answer tagged with a trait label.
type Answer struct {
	Question string `json:"question"`
	Selected string `json:"selected"`
	Trait    string `json:"trait"`
}

// Category groups answers of one quiz section. Membership does not affect scoring.
type Category struct {
	Name    string   `json:"name"`
	Answers []Answer `json:"answers"`
}

// Compute aggregates answers into a vector. Unknown traits are ignored;
// zero matches yields Default().
func Compute(answers []Answer) Vector {
	var counts [len(Axes)]int
	total := 0

	for _, ans := range answers {
		axis, ok := AxisFor(ans.Trait)
		if !ok {
			continue
		}
		counts[axisIndex(axis)]++
		total++
	}

	if total == 0 {
		return Default()
	}

	var v Vector
	for i, a := range Axes {
		val := int(math.Round(float64(counts[i]) / float64(total) * 100))
		v.set(a, clamp(val, MinEvidenceValue, MaxEvidenceValue))
	}
	return v
}

// ComputeCategories flattens a quiz and computes its vector.
func ComputeCategories(categories []Category) Vector {
	n := 0
	for i := range categories {
		n += len(categories[i].Answers)
	}
	flat := make([]Answer, 0, n)
	for i := range categories {
		flat = append(flat, categories[i].Answers...)
	}
	return Compute(flat)
}

// AxisFor resolves a trait label (case-insensitive, trimmed) to its axis.
func AxisFor(trait string) (Axis, bool) {
	a, ok := traitAxis[strings.ToLower(strings.TrimSpace(trait))]
	return a, ok
}

func axisIndex(a Axis) int {
	for i, x := range Axes {
		if x == a {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
