package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"dripcalc/internal/dosing"
	"dripcalc/internal/handlers"
	"dripcalc/internal/logger"
	"dripcalc/internal/models"
)

func TestMain(m *testing.M) {
	logger.Logger = logger.New(io.Discard, false)
	os.Exit(m.Run())
}

func newDecisionHandler(t *testing.T) *handlers.DecisionHandler {
	t.Helper()
	reg, err := dosing.Standard(dosing.PolicyYale, 100, 140)
	if err != nil {
		t.Fatal(err)
	}
	return handlers.NewDecisionHandler(handlers.DecisionConfig{Policies: reg, MaxBatch: 3})
}

func post(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, handlers.DecisionResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp handlers.DecisionResponse
	if w.Code == http.StatusOK || strings.Contains(w.Body.String(), `"decisions"`) {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
	}
	return w, resp
}

func TestDecisionHandler_SingleReading(t *testing.T) {
	w, resp := post(t, newDecisionHandler(t), "/v1/decisions",
		`{"previous_bg": 180, "current_bg": 250, "current_rate": 5.0}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !resp.Success || resp.Accepted != 1 || resp.Rejected != 0 || resp.Policy != dosing.PolicyYale {
		t.Fatalf("unexpected response: %+v", resp)
	}

	d := resp.Decisions[0].Decision
	if d.NewRate == nil || *d.NewRate != 7 || d.Severity != models.SeverityAdjust {
		t.Errorf("unexpected decision: %+v", d)
	}
	if len(resp.Decisions[0].Lines) == 0 {
		t.Error("expected rendered lines")
	}
}

func TestDecisionHandler_SelectsPolicy(t *testing.T) {
	w, resp := post(t, newDecisionHandler(t), "/v1/decisions",
		`{"policy": "simple", "previous_bg": 180, "current_bg": 160, "current_rate": 2.0}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	d := resp.Decisions[0].Decision
	if d.Policy != dosing.PolicySimple || d.NewRate == nil || *d.NewRate != 2 {
		t.Errorf("unexpected decision: %+v", d)
	}
}

func TestDecisionHandler_BatchWithErrors(t *testing.T) {
	body := `{
        "policy": "yale-hourly",
        "readings": [
            {"previous_bg": 140, "current_bg": 110, "current_rate": 4, "hours_elapsed": 2},
            {"previous_bg": 140, "current_bg": -5, "current_rate": 4},
            {"previous_bg": 140, "current_rate": 4}
        ]
    }`
	w, resp := post(t, newDecisionHandler(t), "/v1/decisions", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Success || resp.Accepted != 1 || resp.Rejected != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Errors[0].Index != 1 || !strings.Contains(resp.Errors[0].Error, "negative") {
		t.Errorf("unexpected first error: %+v", resp.Errors[0])
	}
	if resp.Errors[1].Index != 2 || !strings.Contains(resp.Errors[1].Error, "current_bg") {
		t.Errorf("unexpected second error: %+v", resp.Errors[1])
	}
}

func TestDecisionHandler_ArrayBody(t *testing.T) {
	w, resp := post(t, newDecisionHandler(t), "/v1/decisions",
		`[{"previous_bg": 100, "current_bg": 90, "current_rate": 3}]`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if d := resp.Decisions[0].Decision; d.NewRate == nil || *d.NewRate != 2 {
		t.Errorf("unexpected decision: %+v", d)
	}
}

func TestDecisionHandler_AllRejected(t *testing.T) {
	w, resp := post(t, newDecisionHandler(t), "/v1/decisions",
		`{"previous_bg": 100, "current_bg": 90, "current_rate": -1}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if resp.Rejected != 1 || resp.Accepted != 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestDecisionHandler_RequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		ctype  string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "application/json", "", http.StatusMethodNotAllowed},
		{"wrong content type", http.MethodPost, "text/plain", "{}", http.StatusUnsupportedMediaType},
		{"invalid json", http.MethodPost, "application/json", "{not json", http.StatusBadRequest},
		{"empty object", http.MethodPost, "application/json", "{}", http.StatusBadRequest},
		{"unknown policy", http.MethodPost, "application/json", `{"policy":"nope","previous_bg":1,"current_bg":1,"current_rate":1}`, http.StatusBadRequest},
		{"batch too large", http.MethodPost, "application/json", `[{},{},{},{}]`, http.StatusBadRequest},
	}

	h := newDecisionHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/decisions", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.ctype)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), `"success":false`) {
				t.Errorf("expected failure body, got %s", w.Body.String())
			}
		})
	}
}

func TestInitialHandler(t *testing.T) {
	h := handlers.NewInitialHandler(0)

	req := httptest.NewRequest(http.MethodPost, "/v1/initial", bytes.NewBufferString(`{"initial_bg": 200}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp handlers.InitialResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Dose.Bolus != 2 || resp.Dose.Rate != 2 || resp.Dose.Caution != "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestInitialHandler_Errors(t *testing.T) {
	h := handlers.NewInitialHandler(0)
	for _, body := range []string{`{}`, `{"initial_bg": -3}`, `nope`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/initial", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected status 400, got %d", body, w.Code)
		}
	}
}

func TestPoliciesHandler(t *testing.T) {
	reg, _ := dosing.Standard(dosing.PolicyHourly, 100, 140)
	w := httptest.NewRecorder()
	handlers.PoliciesHandler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/policies", nil))

	var resp handlers.PoliciesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Default != dosing.PolicyHourly || len(resp.Policies) != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
}
