package dosing

import "dripcalc/internal/models"

const yaleMonitoring = "Check BG hourly until stable (3 consecutive in target 100-139 mg/dL)."

// yaleGrid is evaluated top to bottom. The two hypoglycemia columns come first
// so they take priority over the adjustment columns.
var yaleGrid = grid{
	{bg: Below(50), rules: []rule{
		{anyChange, effect{
			section:    models.SectionHypoglycemia,
			severity:   models.SeverityCritical,
			action:     models.ActionStop,
			restart:    0.5,
			text:       "D/C INSULIN INFUSION. Give 1 amp (25 g) D50 IV; recheck BG q 15 minutes. When BG ≥ 100 mg/dL, wait 1 hour, then restart insulin infusion at 50% of original rate.",
			monitoring: "Recheck BG q 15 minutes.",
		}},
	}},
	{bg: HalfOpen(50, 75), rules: []rule{
		{anyChange, effect{
			section:    models.SectionHypoglycemia,
			severity:   models.SeverityCritical,
			action:     models.ActionStop,
			restart:    0.75,
			text:       "D/C INSULIN INFUSION. If symptomatic: give 1 amp (25 g) D50 IV. If asymptomatic: give 1/2 amp (12.5 g) D50 IV or 8 ounces juice. Recheck BG q 15-30 minutes. When BG ≥ 100 mg/dL, wait 1 hour, then restart infusion at 75% of original rate.",
			monitoring: "Recheck BG q 15-30 minutes.",
		}},
	}},
	{bg: AtLeast(200), rules: []rule{
		{Above(0), increase(2)},
		{Closed(-25, 0), increase(1)},
		{HalfOpen(-75, -25), noChange()},
		{HalfOpen(-100, -75), decrease(1)},
		{Below(-100), holdThenDecrease(30)},
	}},
	{bg: HalfOpen(140, 200), rules: []rule{
		{Above(50), increase(2)},
		{Closed(0, 50), increase(1)},
		{HalfOpen(-50, 0), noChange()},
		{HalfOpen(-75, -50), decrease(1)},
		{Below(-75), holdThenDecrease(30)},
	}},
	{bg: HalfOpen(100, 140), rules: []rule{
		{Above(25), increase(1)},
		{Closed(-25, 25), noChange()},
		{HalfOpen(-50, -25), decrease(1)},
		{Below(-50), holdThenDecrease(30)},
	}},
	{bg: HalfOpen(75, 100), rules: []rule{
		{Above(0), noChange()},
		{Closed(-25, 0), decrease(1)},
		{Below(-25), effect{
			section:    models.SectionAdjustment,
			severity:   models.SeverityWarning,
			action:     models.ActionStop,
			scale:      0.75,
			restart:    0.75,
			text:       "D/C INSULIN INFUSION. √BG q 30 min; when BG ≥ 100 mg/dL, restart infusion @ 75% of most recent rate.",
			monitoring: "Recheck BG q 30 minutes.",
		}},
	}},
}

// Yale is the five-column grid protocol keyed on the absolute BG change
// between consecutive checks, with rate-banded Δ steps.
type Yale struct{}

func (Yale) Name() string { return PolicyYale }

// Decide evaluates the reading against the grid.
func (p Yale) Decide(r models.Reading) (models.Decision, error) {
	if err := r.Validate(); err != nil {
		return models.Decision{}, err
	}
	return yaleGrid.evaluate(p.Name(), r, r.Change(), YaleSteps.Resolve(r.CurrentRate), "BG change", yaleMonitoring)
}
