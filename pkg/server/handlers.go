package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ruleforge/ruleforge/pkg/rule"
	ruleerrors "github.com/ruleforge/ruleforge/pkg/rule/errors"
	"github.com/ruleforge/ruleforge/pkg/rule/eval"
	"github.com/ruleforge/ruleforge/pkg/security/auth"
	"github.com/ruleforge/ruleforge/pkg/store"
)

// owner resolves the rule owner for a request: the authenticated key's
// owner when auth is on, the configured default otherwise.
func (s *Server) owner(r *http.Request) string {
	if info := auth.KeyInfoFromContext(r.Context()); info != nil {
		return info.Owner
	}
	return s.defaultOwner
}

// decodeJSON reads a JSON body into v, bounded by the configured body
// size limit.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// handleCreateRule stores one rule after validating its syntax.
//
//	POST /api/rules
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("invalid request body: %v", err), "")
		return
	}

	if _, err := rule.Create(req.Rule); err != nil {
		var synErr *ruleerrors.SyntaxError
		if errors.As(err, &synErr) {
			s.collector.RecordParse(string(synErr.Kind))
			writeError(w, http.StatusBadRequest, string(synErr.Kind), synErr.Message, synErr.Suggestion)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_rule", err.Error(), "")
		return
	}
	s.collector.RecordParse("ok")

	stored := &store.Rule{
		ID:        uuid.NewString(),
		Owner:     s.owner(r),
		Text:      req.Rule,
		CreatedAt: time.Now(),
	}

	if err := s.backend.Save(r.Context(), stored); err != nil {
		s.logger.Error("failed to save rule", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to save rule", "")
		return
	}
	s.refreshStoredRules(r)

	writeJSON(w, http.StatusCreated, ruleResponse{
		ID:        stored.ID,
		Owner:     stored.Owner,
		Rule:      stored.Text,
		CreatedAt: stored.CreatedAt,
	})
}

// handleListRules returns the owner's rules, oldest first.
//
//	GET /api/rules
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.backend.List(r.Context(), s.owner(r))
	if err != nil {
		s.logger.Error("failed to list rules", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to list rules", "")
		return
	}

	resp := listRulesResponse{Rules: make([]ruleResponse, 0, len(rules)), Count: len(rules)}
	for _, stored := range rules {
		resp.Rules = append(resp.Rules, ruleResponse{
			ID:        stored.ID,
			Owner:     stored.Owner,
			Rule:      stored.Text,
			CreatedAt: stored.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteRule removes one rule by ID.
//
//	DELETE /api/rules/{id}
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.backend.Delete(r.Context(), s.owner(r), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("rule %s not found", id), "")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete rule", "rule_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to delete rule", "")
		return
	}
	s.refreshStoredRules(r)

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteAllRules removes every rule for the owner.
//
//	DELETE /api/rules
func (s *Server) handleDeleteAllRules(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.backend.DeleteAll(r.Context(), s.owner(r))
	if err != nil {
		s.logger.Error("failed to delete rules", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to delete rules", "")
		return
	}
	s.refreshStoredRules(r)

	writeJSON(w, http.StatusOK, deleteAllResponse{Deleted: deleted})
}

// handleEvaluate evaluates the record in the request body against the
// owner's rules, combined with OR. An empty rule set is vacuously true.
//
//	POST /api/evaluate
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("invalid request body: %v", err), "")
		return
	}

	owner := s.owner(r)
	rules, err := s.backend.List(r.Context(), owner)
	if err != nil {
		s.logger.Error("failed to list rules", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to list rules", "")
		return
	}

	if len(rules) == 0 {
		s.collector.RecordEvaluation(true)
		if s.recorder != nil {
			s.recorder.Record(r.Context(), owner, req.Record, 0, true, 0)
		}
		writeJSON(w, http.StatusOK, evaluateResponse{
			Result:  true,
			Message: "no rules to evaluate",
		})
		return
	}

	texts := make([]string, len(rules))
	for i, stored := range rules {
		texts[i] = stored.Text
	}

	// Rules are validated on the way in, so a combine failure means the
	// stored text was corrupted outside the API.
	tree, err := rule.Combine(texts)
	if err != nil {
		s.logger.Error("failed to combine stored rules", "owner", owner, "error", err)
		writeError(w, http.StatusInternalServerError, "invalid_stored_rule",
			"a stored rule no longer parses", "")
		return
	}

	var diags []diagnosticResponse
	evaluator := eval.New(
		eval.WithLogger(s.logger),
		eval.WithReporter(func(d eval.Diagnostic) {
			s.collector.RecordDiagnostic(string(d.Reason))
			diags = append(diags, diagnosticResponse{
				Reason:    string(d.Reason),
				Attribute: d.Attribute,
				Detail:    d.Detail,
			})
		}),
	)

	result := evaluator.Evaluate(tree, req.Record)
	s.collector.RecordEvaluation(result)
	if s.recorder != nil {
		s.recorder.Record(r.Context(), owner, req.Record, len(rules), result, len(diags))
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Result:      result,
		RuleCount:   len(rules),
		Diagnostics: diags,
	})
}

// handleHealth is the liveness probe.
//
//	GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// handleReady is the readiness probe: ready once the storage backend
// answers.
//
//	GET /readyz
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.backend.Count(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "not_ready",
			"timestamp": time.Now().Unix(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}

// refreshStoredRules updates the stored rule gauge after a mutation.
func (s *Server) refreshStoredRules(r *http.Request) {
	n, err := s.backend.Count(r.Context())
	if err != nil {
		s.logger.Warn("failed to count stored rules", "error", err)
		return
	}
	s.collector.SetStoredRules(n)
}
