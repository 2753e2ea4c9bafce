package dosing

import (
	"fmt"
	"math"
	"strconv"
)

// Range is an interval on the real line. Infinite bounds are always open.
type Range struct {
	Min, Max         float64
	MinIncl, MaxIncl bool
}

// Above is (v, +inf).
func Above(v float64) Range { return Range{Min: v, Max: math.Inf(1)} }

// AtLeast is [v, +inf).
func AtLeast(v float64) Range { return Range{Min: v, Max: math.Inf(1), MinIncl: true} }

// Below is (-inf, v).
func Below(v float64) Range { return Range{Min: math.Inf(-1), Max: v} }

// Closed is [lo, hi].
func Closed(lo, hi float64) Range { return Range{Min: lo, Max: hi, MinIncl: true, MaxIncl: true} }

// HalfOpen is [lo, hi).
func HalfOpen(lo, hi float64) Range { return Range{Min: lo, Max: hi, MinIncl: true} }

// LeftOpen is (lo, hi].
func LeftOpen(lo, hi float64) Range { return Range{Min: lo, Max: hi, MaxIncl: true} }

// Contains reports whether v lies in the range.
func (r Range) Contains(v float64) bool {
	if v < r.Min || (v == r.Min && !r.MinIncl) {
		return false
	}
	if v > r.Max || (v == r.Max && !r.MaxIncl) {
		return false
	}
	return true
}

func (r Range) String() string {
	lo, hi := math.IsInf(r.Min, -1), math.IsInf(r.Max, 1)
	switch {
	case lo && hi:
		return "any"
	case lo && r.MaxIncl:
		return "≤ " + num(r.Max)
	case lo:
		return "< " + num(r.Max)
	case hi && r.MinIncl:
		return "≥ " + num(r.Min)
	case hi:
		return "> " + num(r.Min)
	}

	open, end := "(", ")"
	if r.MinIncl {
		open = "["
	}
	if r.MaxIncl {
		end = "]"
	}
	return fmt.Sprintf("%s%s, %s%s", open, num(r.Min), num(r.Max), end)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
