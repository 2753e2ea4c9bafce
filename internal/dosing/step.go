package dosing

import "dripcalc/internal/models"

type stepBand struct {
	rate Range
	step models.Step
}

// StepTable maps the current infusion rate to Δ and 2Δ. Bands are tested in
// ascending order and the first match wins.
type StepTable []stepBand

// YaleSteps is the rate-banded step table used by the yale and simple policies.
var YaleSteps = StepTable{
	{Below(3), models.Step{Delta: 0.5, TwoDelta: 1}},
	{HalfOpen(3, 6.5), models.Step{Delta: 1, TwoDelta: 2}},
	{HalfOpen(6.5, 10), models.Step{Delta: 1.5, TwoDelta: 3}},
	{HalfOpen(10, 15), models.Step{Delta: 2, TwoDelta: 4}},
	{HalfOpen(15, 20), models.Step{Delta: 3, TwoDelta: 6}},
	{HalfOpen(20, 25), models.Step{Delta: 4, TwoDelta: 8}},
	{AtLeast(25), models.Step{Delta: 5, TwoDelta: 10}},
}

// HourlySteps is the step table of the yale-hourly policy. Its bands are
// closed on the upper bound and stop growing at 4/8.
var HourlySteps = StepTable{
	{Below(3), models.Step{Delta: 0.5, TwoDelta: 1}},
	{Closed(3, 6), models.Step{Delta: 1, TwoDelta: 2}},
	{LeftOpen(6, 9.5), models.Step{Delta: 1.5, TwoDelta: 3}},
	{LeftOpen(9.5, 14.5), models.Step{Delta: 2, TwoDelta: 4}},
	{LeftOpen(14.5, 19.5), models.Step{Delta: 3, TwoDelta: 6}},
	{Above(19.5), models.Step{Delta: 4, TwoDelta: 8}},
}

// Index returns the position of the band containing rate, or -1.
func (t StepTable) Index(rate float64) int {
	for i, b := range t {
		if b.rate.Contains(rate) {
			return i
		}
	}
	return -1
}

// Resolve returns the step for rate. Rates outside every band (only possible
// for invalid input) get the last band.
func (t StepTable) Resolve(rate float64) models.Step {
	if i := t.Index(rate); i >= 0 {
		return t[i].step
	}
	return t[len(t)-1].step
}

// ResolveStep returns Δ and 2Δ for the current rate using YaleSteps.
func ResolveStep(rate float64) models.Step {
	return YaleSteps.Resolve(rate)
}
