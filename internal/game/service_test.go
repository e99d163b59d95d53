package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/nest-trail/internal/services"
	"github.com/jwebster45206/nest-trail/pkg/chat"
	"github.com/jwebster45206/nest-trail/pkg/stats"
)

func newTestService(t *testing.T, llm services.LLMService) *Service {
	t.Helper()
	if llm == nil {
		llm = services.NewMockLLMAPI()
	}
	s, err := NewService(llm, slog.Default())
	require.NoError(t, err)
	return s
}

func TestNewService_SeedsInventory(t *testing.T) {
	s := newTestService(t, nil)

	snap := s.Inventory()
	assert.Equal(t, 100, snap.Cash)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, stats.GasItemName, snap.Items[0].Name)
	assert.Equal(t, 50, snap.Items[0].Count)

	st := s.Stats()
	assert.Zero(t, st.ElapsedMinutes)
	assert.NotEmpty(t, st.CurrentLocation)
}

func TestSendTurn_FiltersNarration(t *testing.T) {
	mock := services.NewMockLLMAPI()
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error) {
		return &chat.Completion{Text: "Damn, the tire blew outside Gilroy."}, nil
	}
	s := newTestService(t, mock)

	resp, err := s.SendTurn(context.Background(), "Drive on.")
	require.NoError(t, err)
	assert.Equal(t, "Dang, the tire blew outside Gilroy.", resp)
}

func TestSendTurn_ToolCallMutatesState(t *testing.T) {
	mock := services.NewMockLLMAPI()
	first := true
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error) {
		if first {
			first = false
			return &chat.Completion{ToolCalls: []chat.ToolCall{{
				ID:        "call_1",
				Name:      "addMoney",
				Arguments: json.RawMessage(`{"amount":25}`),
			}}}, nil
		}
		return &chat.Completion{Text: "You sell the spare tire for $25."}, nil
	}
	s := newTestService(t, mock)

	resp, err := s.SendTurn(context.Background(), "Sell the spare tire.")
	require.NoError(t, err)
	assert.Equal(t, "You sell the spare tire for $25.", resp)
	assert.Equal(t, 125, s.Inventory().Cash)

	events := s.Toasts(0)
	require.Len(t, events, 1)
	assert.Equal(t, "addMoney", events[0].Tool)
}

func TestSendTurn_ToolsAdvertised(t *testing.T) {
	mock := services.NewMockLLMAPI()
	s := newTestService(t, mock)

	_, err := s.SendTurn(context.Background(), "Look around.")
	require.NoError(t, err)

	require.NotEmpty(t, mock.ChatCalls)
	names := make([]string, 0)
	for _, spec := range mock.ChatCalls[0].Tools {
		names = append(names, spec.Name)
	}
	assert.Contains(t, names, "updateStats")
	assert.Contains(t, names, "bestRoute")
	assert.Len(t, names, 14)
}

func TestRouteLeaderboard(t *testing.T) {
	s := newTestService(t, nil)

	result, err := s.RouteLeaderboard("Gilroy", false, true)
	require.NoError(t, err)
	assert.Equal(t, 24, result.TourCount)
	require.NotNil(t, result.Best)
	require.NotNil(t, result.Optimal)
	assert.Equal(t, result.Best.Cost, result.Optimal.Cost)

	_, err = s.RouteLeaderboard("Fresno", false, false)
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	mock := services.NewMockLLMAPI()
	first := true
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error) {
		if first {
			first = false
			return &chat.Completion{ToolCalls: []chat.ToolCall{{
				Name:      "removeMoney",
				Arguments: json.RawMessage(`{"amount":40}`),
			}}}, nil
		}
		return &chat.Completion{Text: "Paid."}, nil
	}
	s := newTestService(t, mock)

	_, err := s.SendTurn(context.Background(), "Pay for repairs.")
	require.NoError(t, err)
	require.Equal(t, 60, s.Inventory().Cash)
	firstToasts := s.Toasts(0)
	require.NotEmpty(t, firstToasts)
	lastID := firstToasts[len(firstToasts)-1].ID

	require.NoError(t, s.Reset())

	snap := s.Inventory()
	assert.Equal(t, 100, snap.Cash)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 50, snap.Items[0].Count)
	assert.Empty(t, s.Toasts(0))

	// Toast IDs continue counting after a reset.
	first = true
	_, err = s.SendTurn(context.Background(), "Pay again.")
	require.NoError(t, err)
	events := s.Toasts(0)
	require.Len(t, events, 1)
	assert.Greater(t, events[0].ID, lastID)
}

func TestReset_WaitsForInFlightTurn(t *testing.T) {
	turnStarted := make(chan struct{})
	release := make(chan struct{})
	mock := services.NewMockLLMAPI()
	first := true
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error) {
		if first {
			first = false
			close(turnStarted)
			<-release
			return &chat.Completion{ToolCalls: []chat.ToolCall{{
				Name:      "removeMoney",
				Arguments: json.RawMessage(`{"amount":40}`),
			}}}, nil
		}
		return &chat.Completion{Text: "Paid."}, nil
	}
	s := newTestService(t, mock)

	turnDone := make(chan error, 1)
	go func() {
		_, err := s.SendTurn(context.Background(), "Pay for repairs.")
		turnDone <- err
	}()
	<-turnStarted

	resetDone := make(chan error, 1)
	go func() {
		resetDone <- s.Reset()
	}()

	// Reset must block until the turn releases the game.
	select {
	case <-resetDone:
		t.Fatal("Reset completed while a turn was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-turnDone)
	require.NoError(t, <-resetDone)

	// The turn's spend landed before the reseed, so the fresh game
	// keeps its full starting cash.
	assert.Equal(t, 100, s.Inventory().Cash)
	assert.Empty(t, s.Toasts(0))
}

func TestLocations(t *testing.T) {
	s := newTestService(t, nil)
	assert.Equal(t, []string{"Gilroy", "Salinas", "Watsonville", "Stockton", "Modesto"}, s.Locations())
}
