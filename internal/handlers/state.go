package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/nest-trail/internal/game"
	"github.com/jwebster45206/nest-trail/pkg/toast"
)

// InventoryHandler serves the current item ledger.
type InventoryHandler struct {
	game   *game.Service
	logger *slog.Logger
}

func NewInventoryHandler(game *game.Service, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{game: game, logger: logger}
}

func (h *InventoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.game.Inventory())
}

// StatsHandler serves the current trip stats.
type StatsHandler struct {
	game   *game.Service
	logger *slog.Logger
}

func NewStatsHandler(game *game.Service, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{game: game, logger: logger}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.game.Stats())
}

// ToastsResponse wraps the toast events for polling clients. LastID is
// the highest ID in the batch; clients pass it back as ?since= on the
// next poll.
type ToastsResponse struct {
	Toasts []toast.Event `json:"toasts"`
	LastID int64         `json:"last_id"`
}

// ToastsHandler serves tool notification events newer than ?since=.
type ToastsHandler struct {
	game   *game.Service
	logger *slog.Logger
}

func NewToastsHandler(game *game.Service, logger *slog.Logger) *ToastsHandler {
	return &ToastsHandler{game: game, logger: logger}
}

func (h *ToastsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	var sinceID int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid 'since' parameter. Expected a non-negative integer.")
			return
		}
		sinceID = parsed
	}

	events := h.game.Toasts(sinceID)
	lastID := sinceID
	if len(events) > 0 {
		lastID = events[len(events)-1].ID
	}
	writeJSON(w, h.logger, http.StatusOK, ToastsResponse{Toasts: events, LastID: lastID})
}

// ResetHandler starts a fresh game.
type ResetHandler struct {
	game   *game.Service
	logger *slog.Logger
}

func NewResetHandler(game *game.Service, logger *slog.Logger) *ResetHandler {
	return &ResetHandler{game: game, logger: logger}
}

func (h *ResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	if err := h.game.Reset(); err != nil {
		h.logger.Error("Error resetting game", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to reset the game.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"status":   "reset",
		"location": h.game.Stats().CurrentLocation,
	})
}
