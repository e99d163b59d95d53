package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	llmProvider string
	logger      *slog.Logger
}

func NewHealthHandler(llmProvider string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   "nest-trail",
		Components: map[string]string{
			"llm": h.llmProvider,
		},
	}
	writeJSON(w, h.logger, http.StatusOK, response)
}
