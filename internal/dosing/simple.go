package dosing

import (
	"errors"
	"fmt"
	"math"

	"dripcalc/internal/models"
)

// Default target bounds of the simple policy, mg/dL.
const (
	DefaultTargetLow  = 100.0
	DefaultTargetHigh = 140.0
)

var ErrInvalidTargets = errors.New("target range must satisfy 0 < low < high")

// simpleStep is the fixed increment of the simple policy.
var simpleStep = models.Step{Delta: 1, TwoDelta: 2}

// Simple is a fixed-step policy with configurable target bounds. It does not
// share thresholds with Yale.
type Simple struct {
	low, high float64
	grid      grid
}

// NewSimple builds the policy for the given target range.
func NewSimple(low, high float64) (*Simple, error) {
	for _, v := range []float64{low, high} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrInvalidTargets
		}
	}
	if low <= 0 || high <= low {
		return nil, fmt.Errorf("%w: got %s-%s", ErrInvalidTargets, num(low), num(high))
	}

	target := fmt.Sprintf("%s-%s mg/dL", num(low), num(high))
	maintain := func(text string) effect {
		return effect{section: models.SectionTarget, severity: models.SeverityHold, action: models.ActionNoChange, text: text}
	}

	g := grid{
		{bg: Below(70), rules: []rule{
			{anyChange, effect{
				section:    models.SectionHypoglycemia,
				severity:   models.SeverityCritical,
				action:     models.ActionStop,
				text:       "STOP INSULIN INFUSION. Give 25 g D50 IV; recheck BG in 15 minutes.",
				monitoring: "Recheck BG in 15 minutes.",
			}},
		}},
		{bg: HalfOpen(70, 100), rules: []rule{
			{anyChange, effect{
				section:  models.SectionHypoglycemia,
				severity: models.SeverityWarning,
				action:   models.ActionDecrease,
				scale:    0.5,
				text:     "BG below 100 mg/dL: reduce infusion rate by 50%.",
			}},
		}},
		{bg: Above(high), rules: []rule{
			{AtLeast(0), effect{
				section:  models.SectionAdjustment,
				severity: models.SeverityAdjust,
				action:   models.ActionIncrease,
				steps:    1,
				text:     fmt.Sprintf("BG above target and not falling: increase rate by %s U/hr.", num(simpleStep.Delta)),
			}},
			{HalfOpen(-30, 0), maintain("BG above target but falling: maintain current rate.")},
			{Below(-30), effect{
				section:  models.SectionAdjustment,
				severity: models.SeverityWarning,
				action:   models.ActionAdvise,
				text:     "BG above target and falling more than 30 mg/dL: consider reducing the rate.",
			}},
		}},
	}
	if low > 100 {
		g = append(g, column{bg: HalfOpen(100, low), rules: []rule{
			{anyChange, maintain(fmt.Sprintf("BG below target range (%s): maintain current rate.", target))},
		}})
	}
	g = append(g, column{bg: Closed(math.Max(low, 100), high), rules: []rule{
		{anyChange, maintain(fmt.Sprintf("BG within target range (%s): maintain current rate.", target))},
	}})

	return &Simple{low: low, high: high, grid: g}, nil
}

func (*Simple) Name() string { return PolicySimple }

// Targets returns the configured target range.
func (p *Simple) Targets() (low, high float64) {
	return p.low, p.high
}

// Decide evaluates the reading against the simple policy.
func (p *Simple) Decide(r models.Reading) (models.Decision, error) {
	if err := r.Validate(); err != nil {
		return models.Decision{}, err
	}
	return p.grid.evaluate(p.Name(), r, r.Change(), simpleStep, "BG change", "Check BG hourly.")
}
