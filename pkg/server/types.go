package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// createRuleRequest is the body of POST /api/rules.
type createRuleRequest struct {
	Rule string `json:"rule"`
}

// ruleResponse is one stored rule as returned by the API.
type ruleResponse struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Rule      string    `json:"rule"`
	CreatedAt time.Time `json:"created_at"`
}

// listRulesResponse is the body of GET /api/rules.
type listRulesResponse struct {
	Rules []ruleResponse `json:"rules"`
	Count int            `json:"count"`
}

// deleteAllResponse is the body of DELETE /api/rules.
type deleteAllResponse struct {
	Deleted int `json:"deleted"`
}

// evaluateRequest is the body of POST /api/evaluate.
type evaluateRequest struct {
	Record map[string]any `json:"record"`
}

// diagnosticResponse describes one condition that degraded to false.
type diagnosticResponse struct {
	Reason    string `json:"reason"`
	Attribute string `json:"attribute"`
	Detail    string `json:"detail,omitempty"`
}

// evaluateResponse is the body of POST /api/evaluate.
type evaluateResponse struct {
	Result      bool                 `json:"result"`
	Message     string               `json:"message,omitempty"`
	RuleCount   int                  `json:"rule_count"`
	Diagnostics []diagnosticResponse `json:"diagnostics,omitempty"`
}

// apiError is the error envelope for all non-2xx API responses.
type apiError struct {
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError serializes an error envelope with the given status code.
func writeError(w http.ResponseWriter, status int, kind, message, suggestion string) {
	writeJSON(w, status, apiError{Error: apiErrorDetail{
		Kind:       kind,
		Message:    message,
		Suggestion: suggestion,
	}})
}
