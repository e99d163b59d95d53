package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/nest-trail/internal/game"
	"github.com/jwebster45206/nest-trail/internal/services"
	"github.com/jwebster45206/nest-trail/pkg/chat"
	"github.com/jwebster45206/nest-trail/pkg/inventory"
	"github.com/jwebster45206/nest-trail/pkg/stats"
)

func newTestGame(t *testing.T, mock *services.MockLLMAPI) *game.Service {
	t.Helper()
	if mock == nil {
		mock = services.NewMockLLMAPI()
	}
	svc, err := game.NewService(mock, slog.Default())
	require.NoError(t, err)
	return svc
}

func TestChatHandler(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		chatFunc       func(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error)
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "wrong method",
			method:         http.MethodGet,
			body:           "",
			expectedStatus: http.StatusMethodNotAllowed,
			expectedError:  "Method not allowed. Only POST is supported.",
		},
		{
			name:           "invalid body",
			method:         http.MethodPost,
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request body. Expected JSON with 'message' field.",
		},
		{
			name:           "empty message",
			method:         http.MethodPost,
			body:           `{"message":""}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Message cannot be empty.",
		},
		{
			name:   "upstream failure",
			method: http.MethodPost,
			body:   `{"message":"Hello"}`,
			chatFunc: func(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error) {
				return nil, errors.New("model unavailable")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to generate response. Please try again.",
		},
		{
			name:   "success",
			method: http.MethodPost,
			body:   `{"message":"Where am I?"}`,
			chatFunc: func(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error) {
				return &chat.Completion{Text: "You stand outside the Salinas center."}, nil
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock := services.NewMockLLMAPI()
			mock.ChatFunc = tc.chatFunc
			handler := NewChatHandler(newTestGame(t, mock), 30*time.Second, slog.Default())

			req := httptest.NewRequest(tc.method, "/v1/chat", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var response chat.ChatResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, response.Error)
			} else {
				assert.Equal(t, "You stand outside the Salinas center.", response.Response)
			}
		})
	}
}

func TestInventoryHandler(t *testing.T) {
	handler := NewInventoryHandler(newTestGame(t, nil), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap inventory.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 100, snap.Cash)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Gas", snap.Items[0].Name)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/inventory", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatsHandler(t *testing.T) {
	handler := NewStatsHandler(newTestGame(t, nil), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap stats.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Zero(t, snap.ElapsedMinutes)
	assert.NotEmpty(t, snap.CurrentLocation)
}

func TestToastsHandler(t *testing.T) {
	mock := services.NewMockLLMAPI()
	calls := 0
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error) {
		calls++
		if calls == 1 {
			return &chat.Completion{ToolCalls: []chat.ToolCall{{
				Name:      "addMoney",
				Arguments: json.RawMessage(`{"amount":10}`),
			}}}, nil
		}
		return &chat.Completion{Text: "Found some change."}, nil
	}
	gameSvc := newTestGame(t, mock)
	_, err := gameSvc.SendTurn(context.Background(), "Search the couch.")
	require.NoError(t, err)

	handler := NewToastsHandler(gameSvc, slog.Default())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/toasts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var response ToastsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Toasts, 1)
	assert.Equal(t, "addMoney", response.Toasts[0].Tool)
	assert.Equal(t, response.Toasts[0].ID, response.LastID)

	// Polling with the returned ID yields nothing new.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/toasts?since="+
		strconv.FormatInt(response.LastID, 10), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Empty(t, response.Toasts)

	// Bad since parameter.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/toasts?since=banana", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutesHandler(t *testing.T) {
	handler := NewRoutesHandler(newTestGame(t, nil), slog.Default())

	tests := []struct {
		name           string
		target         string
		expectedStatus int
	}{
		{"explicit start", "/v1/routes/leaderboard?start=Gilroy", http.StatusOK},
		{"default start is current location", "/v1/routes/leaderboard", http.StatusOK},
		{"with return and optimal", "/v1/routes/leaderboard?start=Stockton&includeReturn=true&computeOptimal=true", http.StatusOK},
		{"unknown start", "/v1/routes/leaderboard?start=Fresno", http.StatusBadRequest},
		{"bad bool", "/v1/routes/leaderboard?start=Gilroy&includeReturn=maybe", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
			assert.Equal(t, tc.expectedStatus, rec.Code)

			if tc.expectedStatus == http.StatusOK {
				var result struct {
					TourCount   int              `json:"tour_count"`
					Leaderboard []map[string]any `json:"leaderboard"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
				assert.Equal(t, 24, result.TourCount)
			}
		})
	}
}

func TestResetHandler(t *testing.T) {
	handler := NewResetHandler(newTestGame(t, nil), slog.Default())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/reset", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "reset", body["status"])
	assert.NotEmpty(t, body["location"])

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reset", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler("mock", slog.Default())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "nest-trail", response.Service)
	assert.Equal(t, "mock", response.Components["llm"])
}
