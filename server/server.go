package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
	"github.com/poyuliu/returns-desk/agent/coordinator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Processor is what the HTTP layer needs from the coordinator.
type Processor interface {
	Process(ctx context.Context, prompt string) (contractx.Result, error)
}

type Server struct {
	processor Processor
}

func New(processor Processor) *Server {
	return &Server{processor: processor}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/process", s.handleProcess)
	return r
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	contractx.Result
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleProcess runs one prompt through the coordinator. A report result
// is served as the xlsx attachment itself; everything else is JSON.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.processor.Process(r.Context(), req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, contractx.ErrNoMatch),
			errors.Is(err, contractx.ErrValidation),
			errors.Is(err, coordinator.ErrInvalidPrompt),
			errors.Is(err, contractx.ErrEmptyDataset):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Error().Err(err).Msg("process request failed")
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if result.ReportPath != "" {
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(result.ReportPath))
		http.ServeFile(w, r, result.ReportPath)
		return
	}

	writeJSON(w, http.StatusOK, response{Status: "ok", Message: result.Message, Result: result})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, response{Status: "error", Message: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
