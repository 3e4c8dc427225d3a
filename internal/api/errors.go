// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/pavloniym/rmp-vast/internal/log"
)

// Problem is the JSON error body of every non-2xx response.
type Problem struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	Code      int    `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem writes a Problem stamped with the request ID.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, p Problem) {
	p.RequestID = log.RequestIDFromContext(r.Context())
	writeJSON(w, status, p)
}

// writeBadRequest writes a 400 for undecodable or invalid input.
func writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeProblem(w, r, http.StatusBadRequest, Problem{Error: "invalid_request", Detail: err.Error()})
}
