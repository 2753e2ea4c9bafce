package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/text/language"

	"dripcalc/internal/dosing"
	"dripcalc/internal/logger"
	"dripcalc/internal/metrics"
	"dripcalc/internal/middleware"
	"dripcalc/internal/models"
	"dripcalc/internal/render"
)

// PolicySource resolves dosing policies by name. The server swaps the
// underlying registry on config reload.
type PolicySource interface {
	Lookup(name string) (dosing.Policy, error)
	Names() []string
	Default() string
}

// DecisionHandler computes infusion rate decisions via HTTP
type DecisionHandler struct {
	policies    PolicySource
	renderer    *render.Renderer
	maxBodySize int64
	maxBatch    int
}

// DecisionConfig holds configuration for the decision handler
type DecisionConfig struct {
	Policies    PolicySource
	MaxBodySize int64
	MaxBatch    int
}

// NewDecisionHandler creates a new decision handler
func NewDecisionHandler(cfg DecisionConfig) *DecisionHandler {
	maxBodySize := cfg.MaxBodySize
	if maxBodySize == 0 {
		maxBodySize = defaultMaxBodySize
	}

	maxBatch := cfg.MaxBatch
	if maxBatch <= 0 {
		maxBatch = 100
	}

	return &DecisionHandler{
		policies:    cfg.Policies,
		renderer:    render.New(language.English),
		maxBodySize: maxBodySize,
		maxBatch:    maxBatch,
	}
}

// ReadingInput is the wire form of a reading. Glucose values and the rate are
// required, so they are pointers to tell absent from zero.
type ReadingInput struct {
	PreviousBG   *float64 `json:"previous_bg,omitempty"`
	CurrentBG    *float64 `json:"current_bg,omitempty"`
	CurrentRate  *float64 `json:"current_rate,omitempty"`
	HoursElapsed float64  `json:"hours_elapsed,omitempty"`
}

func (in ReadingInput) empty() bool {
	return in.PreviousBG == nil && in.CurrentBG == nil && in.CurrentRate == nil
}

// DecisionRequest is the incoming JSON payload (single reading or batch)
type DecisionRequest struct {
	// Policy name; empty selects the configured default
	Policy string `json:"policy,omitempty"`

	// Single reading (if Readings is empty)
	ReadingInput

	// Batch of readings
	Readings []ReadingInput `json:"readings,omitempty"`
}

// DecisionResponse is the response returned to clients
type DecisionResponse struct {
	Success   bool             `json:"success"`
	Policy    string           `json:"policy"`
	Accepted  int              `json:"accepted"`
	Rejected  int              `json:"rejected"`
	Decisions []DecisionResult `json:"decisions"`
	Errors    []DecisionError  `json:"errors,omitempty"`
}

// DecisionResult is the decision for the reading at Index
type DecisionResult struct {
	Index    int             `json:"index"`
	Decision models.Decision `json:"decision"`
	Lines    []render.Line   `json:"lines"`
}

// DecisionError describes a rejected reading
type DecisionError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// ServeHTTP handles the decision HTTP request
func (h *DecisionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON(w, r, h.maxBodySize)
	if !ok {
		return
	}

	policyName, inputs, err := h.parseBody(body)
	if err != nil {
		metrics.ValidationErrors.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(inputs) == 0 {
		metrics.ValidationErrors.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, "no readings provided")
		return
	}

	if len(inputs) > h.maxBatch {
		metrics.ValidationErrors.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("too many readings: %d exceeds limit %d", len(inputs), h.maxBatch))
		return
	}

	policy, err := h.policies.Lookup(policyName)
	if err != nil {
		metrics.ValidationErrors.WithLabelValues("unknown_policy").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.DecisionBatchSize.Observe(float64(len(inputs)))

	response := h.decide(r, policy, inputs)

	status := http.StatusOK
	if response.Rejected > 0 && response.Accepted == 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, response)
}

// parseBody accepts a request object or a bare array of readings
func (h *DecisionHandler) parseBody(body []byte) (string, []ReadingInput, error) {
	var req DecisionRequest
	if err := json.Unmarshal(body, &req); err == nil {
		if len(req.Readings) > 0 {
			return req.Policy, req.Readings, nil
		}
		if !req.ReadingInput.empty() {
			return req.Policy, []ReadingInput{req.ReadingInput}, nil
		}
		return req.Policy, nil, nil
	}

	var readings []ReadingInput
	if err := json.Unmarshal(body, &readings); err == nil {
		return "", readings, nil
	}

	return "", nil, errors.New("invalid JSON format: expected reading object, batch object or array of readings")
}

// decide evaluates every reading with the policy
func (h *DecisionHandler) decide(r *http.Request, policy dosing.Policy, inputs []ReadingInput) DecisionResponse {
	log := logger.WithRequestID(r.Header.Get(middleware.RequestIDHeader))

	response := DecisionResponse{
		Policy:    policy.Name(),
		Decisions: make([]DecisionResult, 0, len(inputs)),
	}

	for i, input := range inputs {
		reading, err := convertInput(input)
		if err == nil {
			var d models.Decision
			d, err = policy.Decide(reading)
			if err == nil {
				response.Decisions = append(response.Decisions, DecisionResult{
					Index:    i,
					Decision: d,
					Lines:    h.renderer.Decision(d),
				})
				response.Accepted++
				metrics.DecisionsTotal.WithLabelValues(d.Policy, string(d.Severity)).Inc()

				log.Debug().
					Int("index", i).
					Str("policy", d.Policy).
					Str("section", string(d.Section)).
					Str("severity", string(d.Severity)).
					Str("action", string(d.Action)).
					Msg("decision computed")
				continue
			}
		}

		reason := "invalid_input"
		if !errors.Is(err, models.ErrInvalidInput) {
			reason = "internal"
			log.Error().Err(err).Int("index", i).Msg("decision failed")
		}
		metrics.ValidationErrors.WithLabelValues(reason).Inc()

		response.Errors = append(response.Errors, DecisionError{Index: i, Error: err.Error()})
		response.Rejected++
	}

	response.Success = response.Rejected == 0
	return response
}

// convertInput converts ReadingInput to Reading
func convertInput(in ReadingInput) (models.Reading, error) {
	switch {
	case in.PreviousBG == nil:
		return models.Reading{}, fmt.Errorf("%w: previous_bg", models.ErrMissingField)
	case in.CurrentBG == nil:
		return models.Reading{}, fmt.Errorf("%w: current_bg", models.ErrMissingField)
	case in.CurrentRate == nil:
		return models.Reading{}, fmt.Errorf("%w: current_rate", models.ErrMissingField)
	}

	return models.Reading{
		PreviousBG:   *in.PreviousBG,
		CurrentBG:    *in.CurrentBG,
		CurrentRate:  *in.CurrentRate,
		HoursElapsed: in.HoursElapsed,
	}, nil
}
