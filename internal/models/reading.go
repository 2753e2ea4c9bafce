package models

import (
	"errors"
	"fmt"
	"math"
)

// Reading is a snapshot of blood-glucose measurements supplied by the caller
// for a single rate decision. It is never stored.
type Reading struct {
	// Blood glucose at the previous check, mg/dL
	PreviousBG float64 `json:"previous_bg"`

	// Blood glucose at this check, mg/dL
	CurrentBG float64 `json:"current_bg"`

	// Insulin infusion rate currently running, units/hour
	CurrentRate float64 `json:"current_rate"`

	// Hours between the two checks. Only hourly policies read it; zero means one hour.
	HoursElapsed float64 `json:"hours_elapsed,omitempty"`
}

// InitialReading is the first glucose value used to compute the starting bolus and rate.
type InitialReading struct {
	InitialBG float64 `json:"initial_bg"`
}

// Validation errors. All of them wrap ErrInvalidInput.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNonFinite       = fmt.Errorf("%w: value must be a finite number", ErrInvalidInput)
	ErrNegativeGlucose = fmt.Errorf("%w: blood glucose cannot be negative", ErrInvalidInput)
	ErrNegativeRate    = fmt.Errorf("%w: infusion rate cannot be negative", ErrInvalidInput)
	ErrInvalidHours    = fmt.Errorf("%w: hours elapsed must be positive", ErrInvalidInput)
	ErrMissingField    = fmt.Errorf("%w: required field missing", ErrInvalidInput)
)

// Validate rejects readings the dosing tables cannot evaluate. HoursElapsed
// is not checked here; see ValidateHours.
func (r Reading) Validate() error {
	for _, v := range []float64{r.PreviousBG, r.CurrentBG, r.CurrentRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFinite
		}
	}

	if r.PreviousBG < 0 || r.CurrentBG < 0 {
		return ErrNegativeGlucose
	}

	if r.CurrentRate < 0 {
		return ErrNegativeRate
	}

	return nil
}

// ValidateHours checks HoursElapsed for policies that normalise by time.
func (r Reading) ValidateHours() error {
	if math.IsNaN(r.HoursElapsed) || math.IsInf(r.HoursElapsed, 0) {
		return ErrNonFinite
	}
	if r.HoursElapsed < 0 {
		return ErrInvalidHours
	}
	return nil
}

// Change returns currentBG - previousBG.
func (r Reading) Change() float64 {
	return r.CurrentBG - r.PreviousBG
}

// Hours returns the elapsed interval, defaulting to one hour.
func (r Reading) Hours() float64 {
	if r.HoursElapsed == 0 {
		return 1
	}
	return r.HoursElapsed
}

// Validate checks the initial glucose value.
func (r InitialReading) Validate() error {
	if math.IsNaN(r.InitialBG) || math.IsInf(r.InitialBG, 0) {
		return ErrNonFinite
	}
	if r.InitialBG < 0 {
		return ErrNegativeGlucose
	}
	return nil
}
