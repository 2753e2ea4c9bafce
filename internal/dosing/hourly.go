package dosing

import "dripcalc/internal/models"

const hourlyMonitoring = "Check BG hourly until stable (3 consecutive in target 120-160 mg/dL)."

func hypoglycemiaStop(severity models.Severity, restart float64, text, monitoring string) effect {
	return effect{
		section:    models.SectionHypoglycemia,
		severity:   severity,
		action:     models.ActionStop,
		restart:    restart,
		text:       text,
		monitoring: monitoring,
	}
}

var hourlyGrid = grid{
	{bg: Below(50), rules: []rule{
		{anyChange, hypoglycemiaStop(models.SeverityCritical, 0.5,
			"D/C INSULIN INFUSION & administer 1 amp (25 g) D50 IV. When BG ≥ 140 mg/dL, wait 30 min, restart insulin infusion at 50% of most recent rate.",
			"Recheck BG q 15 min until ≥90 mg/dL.")},
	}},
	{bg: HalfOpen(50, 75), rules: []rule{
		{anyChange, hypoglycemiaStop(models.SeverityCritical, 0.5,
			"D/C INSULIN INFUSION & administer 1/2 amp (12.5 g) D50 IV. When BG ≥ 140 mg/dL, wait 30 min, restart insulin infusion at 50% of most recent rate.",
			"Recheck BG q 15 min until ≥90 mg/dL.")},
	}},
	{bg: HalfOpen(75, 100), rules: []rule{
		{anyChange, hypoglycemiaStop(models.SeverityWarning, 0.75,
			"D/C INSULIN INFUSION. When BG ≥ 140 mg/dL, wait 30 min, restart infusion at 75% of most recent rate.",
			"Recheck BG q 15 min until BG reaches or remains ≥90 mg/dL.")},
	}},
	{bg: HalfOpen(100, 120), rules: []rule{
		{Above(0), noChange()},
		{Closed(-20, 0), decrease(1)},
		{Below(-20), effect{
			section:    models.SectionRapidFall,
			severity:   models.SeverityWarning,
			action:     models.ActionStop,
			restart:    0.75,
			text:       "D/C INSULIN INFUSION (Section †): BG 100-119 mg/dL and falling by more than 20 mg/dL/hr. When BG ≥ 140 mg/dL, restart infusion at 75% of most recent rate.",
			monitoring: "Recheck BG in 15 min to be sure ≥90 mg/dL, then q 1 hr.",
		}},
	}},
	{bg: HalfOpen(120, 160), rules: []rule{
		{Above(40), increase(1)},
		{Closed(-20, 40), noChange()},
		{HalfOpen(-40, -20), decrease(1)},
		{Below(-40), holdThenDecrease(30)},
	}},
	{bg: HalfOpen(160, 200), rules: []rule{
		{Above(60), increase(2)},
		{Closed(0, 60), increase(1)},
		{HalfOpen(-40, 0), noChange()},
		{HalfOpen(-60, -40), decrease(1)},
		{Below(-60), holdThenDecrease(30)},
	}},
	{bg: AtLeast(200), rules: []rule{
		{Above(0), increase(2)},
		{Closed(-20, 0), increase(1)},
		{HalfOpen(-60, -20), noChange()},
		{HalfOpen(-80, -60), decrease(1)},
		{Below(-80), holdThenDecrease(30)},
	}},
}

// Hourly is the grid protocol keyed on the hourly rate of BG change. It reads
// Reading.HoursElapsed and has a rapid-fall section for BG 100-119.
type Hourly struct{}

func (Hourly) Name() string { return PolicyHourly }

// Decide evaluates the reading against the hourly grid.
func (p Hourly) Decide(r models.Reading) (models.Decision, error) {
	if err := r.Validate(); err != nil {
		return models.Decision{}, err
	}
	if err := r.ValidateHours(); err != nil {
		return models.Decision{}, err
	}
	perHour := r.Change() / r.Hours()
	return hourlyGrid.evaluate(p.Name(), r, perHour, HourlySteps.Resolve(r.CurrentRate), "Hourly BG change", hourlyMonitoring)
}
