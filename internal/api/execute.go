package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shanti-jangam/collaborative-code-env/internal/domain"
)

// CodeRunner executes a snippet and reports every outcome as a result,
// never as an error. The sandbox dispatcher implements it.
type CodeRunner interface {
	Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult
}

// ExecuteHandler serves the code execution endpoint.
type ExecuteHandler struct {
	runner CodeRunner
}

// NewExecuteHandler creates a new execution handler.
func NewExecuteHandler(runner CodeRunner) *ExecuteHandler {
	return &ExecuteHandler{runner: runner}
}

// RegisterRoutes registers the execution routes.
func (h *ExecuteHandler) RegisterRoutes(r chi.Router) {
	r.Post("/execute", h.Execute)
	r.Get("/", h.Welcome)
}

// Execute runs a snippet. Unsupported languages and empty code produce a
// populated error field, never a transport-level failure.
func (h *ExecuteHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req domain.ExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Malformed execution request", "error", err, "ip", r.RemoteAddr)
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.runner.Execute(r.Context(), req)
	JSON(w, http.StatusOK, result)
}

// Welcome returns a greeting for the API root.
func (h *ExecuteHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Collaborative Code Editor API",
	})
}
