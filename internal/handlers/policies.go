package handlers

import "net/http"

// PoliciesResponse lists the selectable dosing policies
type PoliciesResponse struct {
	Default  string   `json:"default"`
	Policies []string `json:"policies"`
}

// PoliciesHandler returns the registered policy names
func PoliciesHandler(policies PolicySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, PoliciesResponse{
			Default:  policies.Default(),
			Policies: policies.Names(),
		})
	}
}
