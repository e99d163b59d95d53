package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/nest-trail/internal/game"
	"github.com/jwebster45206/nest-trail/pkg/chat"
)

// ChatHandler handles player chat requests
type ChatHandler struct {
	game    *game.Service
	timeout time.Duration
	logger  *slog.Logger
}

// NewChatHandler creates a new chat handler. The timeout bounds one
// full turn, which may span several model round-trips.
func NewChatHandler(game *game.Service, timeout time.Duration, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		game:    game,
		timeout: timeout,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for chat
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for chat endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'message' field.")
		return
	}

	if err := request.Validate(); err != nil {
		h.logger.Warn("Invalid chat request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Message cannot be empty.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	response, err := h.game.SendTurn(ctx, request.Message)
	if err != nil {
		h.logger.Error("Error generating chat response", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to generate response. Please try again.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, chat.ChatResponse{Response: response})
}
