// Package render turns decisions into styled text lines for terminals and UIs.
package render

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dripcalc/internal/models"
)

// Style is the visual treatment of a line.
type Style string

const (
	StyleError   Style = "error"
	StyleWarning Style = "warning"
	StyleInfo    Style = "info"
	StyleSuccess Style = "success"
)

// StyleFor maps a decision severity to its display style.
func StyleFor(s models.Severity) Style {
	switch s {
	case models.SeverityCritical:
		return StyleError
	case models.SeverityWarning:
		return StyleWarning
	case models.SeverityAdjust:
		return StyleSuccess
	default:
		return StyleInfo
	}
}

// Line is one rendered line of output.
type Line struct {
	Style Style  `json:"style"`
	Text  string `json:"text"`
}

// Renderer formats numbers for a locale.
type Renderer struct {
	p *message.Printer
}

// New returns a renderer for the given locale.
func New(tag language.Tag) *Renderer {
	return &Renderer{p: message.NewPrinter(tag)}
}

func (r *Renderer) rate(label string, v float64) string {
	return r.p.Sprintf("%s: %.1f U/hr", label, v)
}

// Decision renders a rate decision.
func (r *Renderer) Decision(d models.Decision) []Line {
	var lines []Line

	switch {
	case d.Severity == models.SeverityCritical:
		lines = append(lines, Line{StyleError, "CRITICAL: " + d.Description})
		if d.RestartRate != nil {
			lines = append(lines, Line{StyleInfo, r.rate("Restart Rate", *d.RestartRate)})
		}

	case d.Action == models.ActionStop || d.Action == models.ActionHold:
		lines = append(lines, Line{StyleWarning, "Action: " + d.Description})
		if d.NewRate != nil && *d.NewRate > 0 {
			lines = append(lines, Line{StyleInfo, r.rate("Future Target Rate", *d.NewRate)})
		}
		if d.RestartRate != nil && (d.NewRate == nil || *d.RestartRate != *d.NewRate) {
			lines = append(lines, Line{StyleInfo, r.rate("Restart Rate", *d.RestartRate)})
		}

	case d.Action == models.ActionNoChange:
		lines = append(lines, Line{StyleInfo, "Action: " + d.Description})
		if d.NewRate != nil {
			lines = append(lines, Line{StyleSuccess, r.rate("Continue Current Rate", *d.NewRate)})
		}

	case d.NewRate == nil:
		lines = append(lines, Line{StyleFor(d.Severity), "Action: " + d.Description})

	default:
		lines = append(lines,
			Line{StyleInfo, "Action: " + d.Description},
			Line{StyleFor(d.Severity), r.rate("Recommended New Rate", *d.NewRate)},
		)
	}

	if d.Monitoring != "" {
		lines = append(lines, Line{StyleInfo, d.Monitoring})
	}
	return lines
}

// InitialDose renders the starting bolus and rate.
func (r *Renderer) InitialDose(d models.InitialDose) []Line {
	lines := []Line{
		{StyleSuccess, r.p.Sprintf("Initial Bolus: %.1f U", d.Bolus)},
		{StyleSuccess, r.rate("Initial Infusion Rate", d.Rate)},
	}
	if d.Caution != "" {
		lines = append(lines, Line{StyleWarning, "Caution: " + d.Caution})
	}
	return lines
}

// Write prints lines as "[STYLE] text".
func Write(w io.Writer, lines []Line) error {
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(l.Style)), l.Text); err != nil {
			return err
		}
	}
	return nil
}
