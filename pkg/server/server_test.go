package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ruleforge/ruleforge/pkg/config"
	"github.com/ruleforge/ruleforge/pkg/store"
)

func testServer(t *testing.T, mutate func(*config.Config)) (*Server, store.Backend) {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.Limits.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	backend := store.NewMemoryBackend()
	t.Cleanup(func() { backend.Close() })

	return New(cfg, backend, Options{}), backend
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func createRule(t *testing.T, handler http.Handler, text string) ruleResponse {
	t.Helper()

	rec := doJSON(t, handler, "POST", "/api/rules", createRuleRequest{Rule: text})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create rule %q: status = %d, body = %s", text, rec.Code, rec.Body.String())
	}

	var resp ruleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	return resp
}

func TestCreateRule(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	resp := createRule(t, handler, "age > 30 AND department = 'Sales'")
	if resp.ID == "" {
		t.Error("rule ID is empty")
	}
	if resp.Owner != "default" {
		t.Errorf("owner = %q, want default", resp.Owner)
	}
	if resp.Rule != "age > 30 AND department = 'Sales'" {
		t.Errorf("rule = %q", resp.Rule)
	}
}

func TestCreateRule_SyntaxError(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	tests := []struct {
		rule     string
		wantKind string
	}{
		{"", "empty_expression"},
		{"age >", "incomplete_condition"},
		{"age != 30", "invalid_comparator"},
		{"( age > 30", "unmatched_parenthesis"},
		{"age > 30 extra", "trailing_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.wantKind, func(t *testing.T) {
			rec := doJSON(t, handler, "POST", "/api/rules", createRuleRequest{Rule: tt.rule})
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}

			var resp apiError
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Error.Kind != tt.wantKind {
				t.Errorf("error kind = %q, want %q", resp.Error.Kind, tt.wantKind)
			}
		})
	}
}

func TestCreateRule_BadBody(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	req := httptest.NewRequest("POST", "/api/rules", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListRules(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	createRule(t, handler, "age < 10")
	createRule(t, handler, "salary < 750")

	rec := doJSON(t, handler, "GET", "/api/rules", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp listRulesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.Rules[0].Rule != "age < 10" {
		t.Errorf("rules[0] = %q, want oldest first", resp.Rules[0].Rule)
	}
}

func TestDeleteRule(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	created := createRule(t, handler, "age < 10")

	rec := doJSON(t, handler, "DELETE", "/api/rules/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, handler, "DELETE", "/api/rules/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestDeleteAllRules(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	createRule(t, handler, "age < 10")
	createRule(t, handler, "salary < 750")

	rec := doJSON(t, handler, "DELETE", "/api/rules", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp deleteAllResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", resp.Deleted)
	}
}

func TestEvaluate_NoRules(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	rec := doJSON(t, handler, "POST", "/api/evaluate", evaluateRequest{
		Record: map[string]any{"age": 5},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp evaluateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Result {
		t.Error("result = false, want vacuous true")
	}
	if resp.Message != "no rules to evaluate" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestEvaluate(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	createRule(t, handler, "age < 10")
	createRule(t, handler, "salary < 750")

	tests := []struct {
		name   string
		record map[string]any
		want   bool
	}{
		{"first rule matches", map[string]any{"age": 5, "salary": 1000}, true},
		{"second rule matches", map[string]any{"age": 50, "salary": 500}, true},
		{"no rule matches", map[string]any{"age": 50, "salary": 1000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, "POST", "/api/evaluate", evaluateRequest{Record: tt.record})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var resp evaluateResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Result != tt.want {
				t.Errorf("result = %v, want %v", resp.Result, tt.want)
			}
			if resp.RuleCount != 2 {
				t.Errorf("rule_count = %d, want 2", resp.RuleCount)
			}
		})
	}
}

func TestEvaluate_Diagnostics(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	createRule(t, handler, "age < 10")

	rec := doJSON(t, handler, "POST", "/api/evaluate", evaluateRequest{
		Record: map[string]any{"department": "Sales"},
	})

	var resp evaluateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result {
		t.Error("result = true, want false for missing attribute")
	}
	if len(resp.Diagnostics) != 1 {
		t.Fatalf("len(diagnostics) = %d, want 1", len(resp.Diagnostics))
	}
	if resp.Diagnostics[0].Reason != "missing_attribute" {
		t.Errorf("reason = %q, want missing_attribute", resp.Diagnostics[0].Reason)
	}
	if resp.Diagnostics[0].Attribute != "age" {
		t.Errorf("attribute = %q, want age", resp.Diagnostics[0].Attribute)
	}
}

func TestAuth(t *testing.T) {
	s, _ := testServer(t, func(cfg *config.Config) {
		cfg.Security.Auth.Enabled = true
		cfg.Security.Auth.Keys = []config.APIKey{
			{Key: "alice-key", Owner: "alice"},
			{Key: "bob-key", Owner: "bob"},
		}
	})
	handler := s.Handler()

	// Unauthenticated API access is rejected.
	rec := doJSON(t, handler, "GET", "/api/rules", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}

	// Probes stay open.
	rec = doJSON(t, handler, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}

	// Rules are scoped per key owner.
	req := httptest.NewRequest("POST", "/api/rules",
		strings.NewReader(`{"rule": "age < 10"}`))
	req.Header.Set("Authorization", "Bearer alice-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("alice create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/rules", nil)
	req.Header.Set("X-API-Key", "bob-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp listRulesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("bob sees %d rules, want 0", resp.Count)
	}
}

func TestRateLimit(t *testing.T) {
	s, _ := testServer(t, func(cfg *config.Config) {
		cfg.Limits.Enabled = true
		cfg.Limits.Burst = 3
		cfg.Limits.RequestsPerSecond = 0.001
	})
	handler := s.Handler()

	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = doJSON(t, handler, "GET", "/api/rules", nil)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}

	// Probes are not rate limited.
	rec := doJSON(t, handler, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}

func TestProbes(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, handler, "GET", path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	createRule(t, handler, "age < 10")
	doJSON(t, handler, "POST", "/api/evaluate", evaluateRequest{
		Record: map[string]any{"age": 5},
	})

	rec := doJSON(t, handler, "GET", "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`ruleforge_rules_parsed_total{outcome="ok"} 1`,
		`ruleforge_evaluations_total{result="true"} 1`,
		`ruleforge_stored_rules 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRequestID(t *testing.T) {
	s, _ := testServer(t, nil)
	handler := s.Handler()

	rec := doJSON(t, handler, "GET", "/healthz", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied" {
		t.Errorf("X-Request-ID = %q, want client-supplied", got)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	s, _ := testServer(t, func(cfg *config.Config) {
		cfg.Server.MaxBodyBytes = 64
	})
	handler := s.Handler()

	big := fmt.Sprintf(`{"rule": "department = '%s'"}`, strings.Repeat("x", 200))
	req := httptest.NewRequest("POST", "/api/rules", strings.NewReader(big))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for oversized body", rec.Code)
	}
}
