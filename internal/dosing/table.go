package dosing

import (
	"errors"
	"fmt"
	"math"

	"dripcalc/internal/models"
)

// effect is the right-hand side of a table row.
type effect struct {
	section  models.Section
	severity models.Severity
	action   models.Action

	// signed multiple of Δ added to the current rate
	steps int

	// fraction of the current rate; replaces steps when non-zero
	scale float64

	// fraction of the current rate to resume at after a stop
	restart float64

	hold       int
	text       string
	monitoring string
}

type rule struct {
	when Range
	then effect
}

// column groups the change rows that apply within one glucose range.
type column struct {
	bg    Range
	rules []rule
}

func (c column) match(change float64) (rule, bool) {
	for _, r := range c.rules {
		if r.when.Contains(change) {
			return r, true
		}
	}
	return rule{}, false
}

// grid is an ordered list of glucose columns. The first matching column wins.
type grid []column

func (g grid) match(bg float64) (column, bool) {
	for _, c := range g {
		if c.bg.Contains(bg) {
			return c, true
		}
	}
	return column{}, false
}

// ErrNoRule means no table row matched. The tables partition the valid
// input domain, so only unvalidated input can produce it.
var ErrNoRule = errors.New("no protocol row matches reading")

// anyChange matches every glucose change.
var anyChange = Range{Min: math.Inf(-1), Max: math.Inf(1)}

// evaluate selects the column for the current BG, then the row for change.
func (g grid) evaluate(policy string, r models.Reading, change float64, step models.Step, changeLabel, monitoring string) (models.Decision, error) {
	col, ok := g.match(r.CurrentBG)
	if !ok {
		return models.Decision{}, fmt.Errorf("%w: current BG %s", ErrNoRule, num(r.CurrentBG))
	}
	row, ok := col.match(change)
	if !ok {
		return models.Decision{}, fmt.Errorf("%w: change %s", ErrNoRule, num(change))
	}

	why := []string{
		fmt.Sprintf("Current BG %s mg/dL selects column %s.", num(r.CurrentBG), col.bg),
		fmt.Sprintf("%s %s matches row %s.", changeLabel, signed(change), row.when),
		fmt.Sprintf("Current rate %s U/hr gives Δ = %s, 2Δ = %s.", num(r.CurrentRate), num(step.Delta), num(step.TwoDelta)),
	}

	d := row.then.decide(policy, r, change, &step, why)
	if d.Monitoring == "" {
		d.Monitoring = monitoring
	}
	return d, nil
}

func signed(v float64) string {
	if v > 0 {
		return "+" + num(v)
	}
	return num(v)
}

// decide turns an effect into a Decision for the reading.
func (e effect) decide(policy string, r models.Reading, change float64, step *models.Step, why []string) models.Decision {
	d := models.Decision{
		Policy:      policy,
		Section:     e.section,
		Severity:    e.severity,
		Action:      e.action,
		Description: e.describe(step),
		HoldMinutes: e.hold,
		Change:      change,
		Step:        step,
		Monitoring:  e.monitoring,
		Reasoning:   why,
	}

	switch {
	case e.action == models.ActionAdvise:
	case e.scale != 0:
		d.NewRate = models.Float(scaleRate(r.CurrentRate, e.scale))
	case e.action == models.ActionStop:
		d.NewRate = models.Float(0)
	case step != nil:
		d.NewRate = models.Float(stepRate(r.CurrentRate, *step, e.steps))
	default:
		d.NewRate = models.Float(r.CurrentRate)
	}

	if e.restart != 0 {
		d.RestartRate = models.Float(scaleRate(r.CurrentRate, e.restart))
		d.Reasoning = append(d.Reasoning, fmt.Sprintf("Restart at %s%% of the most recent rate (%s U/hr).",
			num(e.restart*100), num(*d.RestartRate)))
	}

	if d.NewRate != nil {
		if e.hold > 0 {
			d.Reasoning = append(d.Reasoning, fmt.Sprintf("Hold infusion for %d minutes, then run %s U/hr.", e.hold, num(*d.NewRate)))
		} else if e.action != models.ActionStop {
			d.Reasoning = append(d.Reasoning, fmt.Sprintf("Change rate from %s to %s U/hr.", num(r.CurrentRate), num(*d.NewRate)))
		}
	}
	return d
}

func (e effect) describe(step *models.Step) string {
	if e.text != "" || step == nil {
		return e.text
	}

	label, amount := "Δ", step.Delta
	if e.steps == 2 || e.steps == -2 {
		label, amount = "2Δ", step.TwoDelta
	}

	switch e.action {
	case models.ActionIncrease:
		return fmt.Sprintf("↑ INFUSION by %s (+%s U/hr)", label, num(amount))
	case models.ActionDecrease:
		return fmt.Sprintf("↓ INFUSION by %s (-%s U/hr)", label, num(amount))
	case models.ActionHold:
		return fmt.Sprintf("HOLD x %d min, then ↓ INFUSION by %s (-%s U/hr)", e.hold, label, num(amount))
	case models.ActionNoChange:
		return "NO INFUSION CHANGE"
	default:
		return string(e.action)
	}
}

// row helpers keep the protocol tables readable.

func increase(n int) effect {
	return effect{section: models.SectionAdjustment, severity: models.SeverityAdjust, action: models.ActionIncrease, steps: n}
}

func decrease(n int) effect {
	return effect{section: models.SectionAdjustment, severity: models.SeverityAdjust, action: models.ActionDecrease, steps: -n}
}

func noChange() effect {
	return effect{section: models.SectionAdjustment, severity: models.SeverityNoChange, action: models.ActionNoChange}
}

func holdThenDecrease(minutes int) effect {
	return effect{section: models.SectionAdjustment, severity: models.SeverityWarning, action: models.ActionHold, steps: -2, hold: minutes}
}
