// Package server exposes the question and update entry points over HTTP.
// The wire format matches the external dashboard's expectations: questions
// arrive as {"messages": ...} and answers return as {"result": ...}.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/interpreter"
	"warehouse-rag/internal/logger"
	"warehouse-rag/internal/service"
)

// Server routes HTTP requests to the coordinator and the interpreter.
type Server struct {
	coordinator *service.Coordinator
	interpreter *interpreter.Interpreter
	timeout     time.Duration
	httpServer  *http.Server
}

// New creates a server on addr. timeout bounds each generation call.
func New(addr string, coordinator *service.Coordinator, in *interpreter.Interpreter, timeout time.Duration) *Server {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	s := &Server{
		coordinator: coordinator,
		interpreter: in,
		timeout:     timeout,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleQuestion)
	mux.HandleFunc("/update", s.handleUpdate)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	logger.Info("http server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type questionRequest struct {
	Messages string `json:"messages"`
}

type questionResponse struct {
	QueryID string `json:"query_id,omitempty"`
	Result  string `json:"result"`
}

type updateRequest struct {
	Command string `json:"command"`
}

type updateResponse struct {
	ProductID     int               `json:"product_id"`
	AppliedFields map[string]string `json:"applied_fields"`
	DroppedFields []string          `json:"dropped_fields,omitempty"`
	Message       string            `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "POST required"})
		return
	}
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Messages == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be {\"messages\": \"<question>\"}"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	q, err := s.coordinator.Answer(ctx, req.Messages)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrGenerationFailed) {
			status = http.StatusBadGateway
		}
		logger.Warn("query %s failed: %v", q.ID, err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, questionResponse{QueryID: q.ID, Result: q.Answer})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "POST required"})
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Command == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be {\"command\": \"<update text>\"}"})
		return
	}

	result, err := s.interpreter.Execute(req.Command)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrAmbiguousTarget),
			errors.Is(err, domain.ErrNoApplicableFields):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, domain.ErrTargetNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrDataUnavailable):
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{
		ProductID:     result.ProductID,
		AppliedFields: result.AppliedFields,
		DroppedFields: result.DroppedFields,
		Message:       result.Message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
