package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/nest-trail/internal/game"
	"github.com/jwebster45206/nest-trail/pkg/routes"
)

// RoutesHandler serves the tour leaderboard between the centers.
type RoutesHandler struct {
	game   *game.Service
	logger *slog.Logger
}

func NewRoutesHandler(game *game.Service, logger *slog.Logger) *RoutesHandler {
	return &RoutesHandler{game: game, logger: logger}
}

func (h *RoutesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	query := r.URL.Query()
	start := query.Get("start")
	if start == "" {
		// Default to the player's current location.
		start = h.game.Stats().CurrentLocation
	}

	includeReturn, err := parseBoolParam(query.Get("includeReturn"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid 'includeReturn' parameter. Expected true or false.")
		return
	}
	computeOptimal, err := parseBoolParam(query.Get("computeOptimal"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid 'computeOptimal' parameter. Expected true or false.")
		return
	}

	result, err := h.game.RouteLeaderboard(start, includeReturn, computeOptimal)
	if err != nil {
		if errors.Is(err, routes.ErrUnknownLocation) {
			writeError(w, h.logger, http.StatusBadRequest, "Unknown start location: "+start)
			return
		}
		h.logger.Error("Error computing route leaderboard", "error", err, "start", start)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to compute routes.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

func parseBoolParam(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
