package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shanti-jangam/collaborative-code-env/internal/domain"
)

type stubRunner struct {
	lastReq domain.ExecutionRequest
	result  domain.ExecutionResult
}

func (s *stubRunner) Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	s.lastReq = req
	return s.result
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]string{"hello": "world"})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("Expected hello=world, got %v", body)
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "something broke")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["error"] != "something broke" {
		t.Errorf("Expected error message, got %v", body)
	}
}

func TestExecute_Success(t *testing.T) {
	runner := &stubRunner{result: domain.ExecutionResult{Output: "42\n"}}
	h := NewExecuteHandler(runner)

	req := httptest.NewRequest(http.MethodPost, "/execute",
		strings.NewReader(`{"code":"console.log(42)","language":"javascript"}`))
	w := httptest.NewRecorder()
	h.Execute(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if runner.lastReq.Code != "console.log(42)" || runner.lastReq.Language != "javascript" {
		t.Errorf("Expected request to be forwarded, got %+v", runner.lastReq)
	}

	var result domain.ExecutionResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Output != "42\n" || result.Error != "" {
		t.Errorf("Expected output 42, got %+v", result)
	}
}

func TestExecute_SandboxErrorsStayHTTP200(t *testing.T) {
	runner := &stubRunner{result: domain.ExecutionResult{Error: "Code cannot be empty"}}
	h := NewExecuteHandler(runner)

	req := httptest.NewRequest(http.MethodPost, "/execute",
		strings.NewReader(`{"code":"","language":"python"}`))
	w := httptest.NewRecorder()
	h.Execute(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for sandbox-level failure, got %d", w.Code)
	}

	var result domain.ExecutionResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Error != "Code cannot be empty" {
		t.Errorf("Expected sandbox error in body, got %+v", result)
	}
}

func TestExecute_MalformedBody(t *testing.T) {
	runner := &stubRunner{}
	h := NewExecuteHandler(runner)

	req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	h.Execute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if runner.lastReq.Code != "" || runner.lastReq.Language != "" {
		t.Errorf("Expected runner not to be invoked, got %+v", runner.lastReq)
	}
}

func TestWelcome(t *testing.T) {
	h := NewExecuteHandler(&stubRunner{})
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if !strings.Contains(body["message"], "Collaborative Code Editor") {
		t.Errorf("Expected welcome message, got %v", body)
	}
}
