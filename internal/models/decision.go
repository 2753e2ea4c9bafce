package models

// Severity classifies a decision for display and alerting.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityHold     Severity = "HOLD"
	SeverityNoChange Severity = "NO_CHANGE"
	SeverityAdjust   Severity = "ADJUST"
)

// IsValid checks if the severity level is known
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityHold, SeverityNoChange, SeverityAdjust:
		return true
	default:
		return false
	}
}

// Action is the kind of change applied to the infusion.
type Action string

const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionNoChange Action = "no_change"
	ActionHold     Action = "hold"
	ActionStop     Action = "stop"
	ActionAdvise   Action = "advise"
)

// Section names the part of the protocol that produced a decision.
type Section string

const (
	SectionInitial      Section = "initial"
	SectionHypoglycemia Section = "hypoglycemia"
	SectionAdjustment   Section = "adjustment"
	SectionRapidFall    Section = "rapid_fall"
	SectionTarget       Section = "target"
)

// Step is the rate-dependent adjustment size (Δ and 2Δ), units/hour.
type Step struct {
	Delta    float64 `json:"delta"`
	TwoDelta float64 `json:"two_delta"`
}

// Decision is the output of one policy evaluation.
type Decision struct {
	Policy   string   `json:"policy"`
	Section  Section  `json:"section"`
	Severity Severity `json:"severity"`
	Action   Action   `json:"action"`

	// Human-readable instruction
	Description string `json:"description"`

	// Rate to run once the action is carried out. Nil for advisory decisions
	// that do not compute a rate.
	NewRate *float64 `json:"new_rate"`

	// Rate to resume at once glucose recovers, set for stop actions
	RestartRate *float64 `json:"restart_rate,omitempty"`

	// Minutes to pause the infusion before NewRate applies
	HoldMinutes int `json:"hold_minutes,omitempty"`

	// Glucose change used for row selection (mg/dL, or mg/dL/hr for hourly policies)
	Change float64 `json:"change"`

	Step       *Step    `json:"step,omitempty"`
	Monitoring string   `json:"monitoring,omitempty"`
	Reasoning  []string `json:"explanation,omitempty"`
}

// HasRate reports whether the decision carries a computed new rate.
func (d Decision) HasRate() bool {
	return d.NewRate != nil
}

// InitialDose is the starting bolus and infusion rate.
type InitialDose struct {
	InitialBG float64 `json:"initial_bg"`
	Bolus     float64 `json:"bolus"`
	Rate      float64 `json:"rate"`
	Caution   string  `json:"caution,omitempty"`
}

// Float returns a pointer to v, for optional rate fields.
func Float(v float64) *float64 {
	return &v
}
