package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/text/language"

	"dripcalc/internal/dosing"
	"dripcalc/internal/logger"
	"dripcalc/internal/metrics"
	"dripcalc/internal/middleware"
	"dripcalc/internal/models"
	"dripcalc/internal/render"
)

// InitialHandler computes the starting bolus and infusion rate
type InitialHandler struct {
	renderer    *render.Renderer
	maxBodySize int64
}

// NewInitialHandler creates a new initial dose handler
func NewInitialHandler(maxBodySize int64) *InitialHandler {
	if maxBodySize == 0 {
		maxBodySize = defaultMaxBodySize
	}
	return &InitialHandler{
		renderer:    render.New(language.English),
		maxBodySize: maxBodySize,
	}
}

// InitialRequest is the incoming JSON payload
type InitialRequest struct {
	InitialBG *float64 `json:"initial_bg"`
}

// InitialResponse is the response returned to clients
type InitialResponse struct {
	Success bool               `json:"success"`
	Dose    models.InitialDose `json:"dose"`
	Lines   []render.Line      `json:"lines"`
}

// ServeHTTP handles the initial dose HTTP request
func (h *InitialHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON(w, r, h.maxBodySize)
	if !ok {
		return
	}

	var req InitialRequest
	if err := json.Unmarshal(body, &req); err != nil || req.InitialBG == nil {
		metrics.ValidationErrors.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, "initial_bg is required")
		return
	}

	dose, err := dosing.InitialDose(models.InitialReading{InitialBG: *req.InitialBG})
	if err != nil {
		metrics.ValidationErrors.WithLabelValues("invalid_input").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.InitialDosesTotal.Inc()
	log := logger.WithRequestID(r.Header.Get(middleware.RequestIDHeader))
	log.Debug().
		Float64("initial_bg", dose.InitialBG).
		Float64("rate", dose.Rate).
		Bool("caution", dose.Caution != "").
		Msg("initial dose computed")

	writeJSON(w, http.StatusOK, InitialResponse{
		Success: true,
		Dose:    dose,
		Lines:   h.renderer.InitialDose(dose),
	})
}
