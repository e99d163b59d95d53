package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/nest-trail/pkg/inventory"
	"github.com/jwebster45206/nest-trail/pkg/routes"
	"github.com/jwebster45206/nest-trail/pkg/stats"
	"github.com/jwebster45206/nest-trail/pkg/toast"
)

type gameFixture struct {
	registry *Registry
	toasts   *toast.Tracker
	ledger   *inventory.Ledger
	stats    *stats.Tracker
	tools    *GameTools
}

func newGameFixture(t *testing.T) *gameFixture {
	t.Helper()
	toasts := toast.NewTracker()
	registry := NewRegistry(toasts, slog.Default())
	ledger := inventory.NewLedger()
	tracker := stats.NewTracker(ledger)
	gt, err := NewGameTools(registry, ledger, tracker, routes.Default())
	require.NoError(t, err)
	return &gameFixture{
		registry: registry,
		toasts:   toasts,
		ledger:   ledger,
		stats:    tracker,
		tools:    gt,
	}
}

func TestGameTools_AllRegistered(t *testing.T) {
	f := newGameFixture(t)
	want := []string{
		"addItem", "removeItem", "addMoney", "removeMoney", "getMoney",
		"listInventory", "getStats", "updateStats", "rollDice",
		"rollDifficulty", "setDifficulty", "listRoutes", "travelCost",
		"bestRoute",
	}
	specs := f.registry.Specs()
	require.Len(t, specs, len(want))
	for i, name := range want {
		assert.Equal(t, name, specs[i].Name)
	}
}

func TestGameTools_AddItem(t *testing.T) {
	f := newGameFixture(t)
	result := f.registry.Dispatch("addItem", json.RawMessage(`{"name":"Coffee","description":"Hot and strong","count":2}`))
	assert.Equal(t, `Item "Coffee" added successfully.`, result)

	snap := f.ledger.List()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Coffee", snap.Items[0].Name)
	assert.Equal(t, 2, snap.Items[0].Count)

	events := f.toasts.Since(0)
	require.Len(t, events, 1)
	assert.Equal(t, "addItem", events[0].Tool)
}

func TestGameTools_AddItem_Validation(t *testing.T) {
	f := newGameFixture(t)
	result := f.registry.Dispatch("addItem", json.RawMessage(`{"name":"Coffee","description":"Hot","count":0}`))
	assert.Contains(t, result, "Error:")
	assert.Empty(t, f.toasts.Since(0))
	assert.Empty(t, f.ledger.List().Items)
}

func TestGameTools_RemoveItem(t *testing.T) {
	f := newGameFixture(t)
	require.NoError(t, f.ledger.AddItem("Gas", "Fuel for the van", 10))

	tests := []struct {
		name       string
		args       string
		want       string
		wantToasts int
	}{
		{"success", `{"name":"Gas","count":4}`, `Removed 4 x "Gas". Remaining: 6.`, 1},
		{"insufficient", `{"name":"Gas","count":50}`, "Not enough Gas to remove. Available count: 6", 1},
		{"not found", `{"name":"Pickles","count":1}`, `Item "Pickles" not found in inventory.`, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := f.registry.Dispatch("removeItem", json.RawMessage(tc.args))
			assert.Equal(t, tc.want, result)
			assert.Len(t, f.toasts.Since(0), tc.wantToasts)
		})
	}
}

func TestGameTools_Money(t *testing.T) {
	f := newGameFixture(t)
	require.NoError(t, f.ledger.SetCash(100))

	result := f.registry.Dispatch("addMoney", json.RawMessage(`{"amount":50}`))
	assert.Equal(t, "Money increased by 50. Balance: 150", result)

	result = f.registry.Dispatch("removeMoney", json.RawMessage(`{"amount":30}`))
	assert.Equal(t, "Money decreased by 30. Balance: 120", result)

	result = f.registry.Dispatch("removeMoney", json.RawMessage(`{"amount":500}`))
	assert.Equal(t, "Insufficient funds. Current balance: 120", result)

	result = f.registry.Dispatch("getMoney", nil)
	assert.JSONEq(t, `{"money":120}`, result)

	// The refused removal stays silent; the two successes toast.
	assert.Len(t, f.toasts.Since(0), 2)
}

func TestGameTools_Money_RejectsNonPositive(t *testing.T) {
	f := newGameFixture(t)
	require.NoError(t, f.ledger.SetCash(100))

	result := f.registry.Dispatch("addMoney", json.RawMessage(`{"amount":-5}`))
	assert.Contains(t, result, "Error:")
	assert.Equal(t, 100, f.ledger.CashBalance())
}

func TestGameTools_ListInventory(t *testing.T) {
	f := newGameFixture(t)
	require.NoError(t, f.ledger.SetCash(100))
	require.NoError(t, f.ledger.AddItem("Gas", "Fuel for the van", 50))

	result := f.registry.Dispatch("listInventory", nil)
	var snap inventory.Snapshot
	require.NoError(t, json.Unmarshal([]byte(result), &snap))
	assert.Equal(t, 100, snap.Cash)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Gas", snap.Items[0].Name)
	assert.Equal(t, 50, snap.Items[0].Count)
}

func TestGameTools_GetStats(t *testing.T) {
	f := newGameFixture(t)
	result := f.registry.Dispatch("getStats", nil)
	var snap stats.Snapshot
	require.NoError(t, json.Unmarshal([]byte(result), &snap))
	assert.Zero(t, snap.ElapsedMinutes)
	assert.NotEmpty(t, snap.CurrentLocation)
}

func TestGameTools_UpdateStats(t *testing.T) {
	f := newGameFixture(t)
	require.NoError(t, f.ledger.AddItem("Gas", "Fuel for the van", 50))

	result := f.registry.Dispatch("updateStats", json.RawMessage(`{"timeElapsed":30,"newLocation":"Gilroy","distanceTraveled":30}`))
	assert.Contains(t, result, "Update successful.")
	assert.Contains(t, result, "Gas: 45")

	snap := f.stats.Get()
	assert.Equal(t, 30, snap.ElapsedMinutes)
	assert.Equal(t, "Gilroy", snap.CurrentLocation)

	events := f.toasts.Since(0)
	require.Len(t, events, 1)
	assert.Equal(t, "Traveled to Gilroy (5 gas used)", events[0].Payload)
}

func TestGameTools_UpdateStats_FuelRefusal(t *testing.T) {
	f := newGameFixture(t)
	require.NoError(t, f.ledger.AddItem("Gas", "Fuel for the van", 2))
	before := f.stats.Get()

	result := f.registry.Dispatch("updateStats", json.RawMessage(`{"timeElapsed":60,"newLocation":"Stockton","distanceTraveled":100}`))
	assert.Equal(t, "Cannot travel because gas is too low. Time and location remain unchanged. Please alert the player of this issue.", result)

	assert.Equal(t, before, f.stats.Get())
	assert.Empty(t, f.toasts.Since(0))
}

func TestGameTools_UpdateStats_NoDistance(t *testing.T) {
	f := newGameFixture(t)

	result := f.registry.Dispatch("updateStats", json.RawMessage(`{"timeElapsed":15,"newLocation":"Camp"}`))
	assert.Contains(t, result, "Update successful.")

	events := f.toasts.Since(0)
	require.Len(t, events, 1)
	assert.Equal(t, "Now at Camp", events[0].Payload)
}

func TestGameTools_RollDice_Bounds(t *testing.T) {
	f := newGameFixture(t)
	for i := 0; i < 100; i++ {
		result := f.registry.Dispatch("rollDice", nil)
		var roll int
		_, err := fmt.Sscanf(result, "Rolled a %d on a d20.", &roll)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, roll, 1)
		assert.LessOrEqual(t, roll, 20)
	}
}

func TestGameTools_RollDifficulty(t *testing.T) {
	f := newGameFixture(t)
	f.tools.rollD20 = func() int { return 10 }

	result := f.registry.Dispatch("rollDifficulty", json.RawMessage(`{"modifier":3}`))
	assert.Contains(t, result, "raw 10")
	assert.Contains(t, result, "Total: 13.")

	f.registry.Dispatch("setDifficulty", json.RawMessage(`{"level":"hardest"}`))
	result = f.registry.Dispatch("rollDifficulty", json.RawMessage(`{"modifier":3}`))
	assert.Contains(t, result, "difficulty bias -6")
	assert.Contains(t, result, "Total: 7.")

	result = f.registry.Dispatch("rollDifficulty", json.RawMessage(`{}`))
	assert.Contains(t, result, "Total: 4.")
}

func TestGameTools_SetDifficulty(t *testing.T) {
	f := newGameFixture(t)

	tests := []struct {
		level string
		bias  int
	}{
		{"easy", 2},
		{"normal", 0},
		{"hard", -2},
		{"harder", -4},
		{"hardest", -6},
		{"HARD", -2}, // case-insensitive
	}
	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			result := f.registry.Dispatch("setDifficulty", json.RawMessage(fmt.Sprintf(`{"level":%q}`, tc.level)))
			assert.NotContains(t, result, "Error:")
			assert.Equal(t, tc.bias, f.tools.DifficultyBias())
		})
	}

	result := f.registry.Dispatch("setDifficulty", json.RawMessage(`{"level":"nightmare"}`))
	assert.Contains(t, result, "unknown difficulty")
	assert.Equal(t, -2, f.tools.DifficultyBias()) // last valid setting retained
}

func TestGameTools_ListRoutes(t *testing.T) {
	f := newGameFixture(t)

	result := f.registry.Dispatch("listRoutes", json.RawMessage(`{"from":"Gilroy"}`))
	var payload struct {
		From   string        `json:"from"`
		Routes []routes.Edge `json:"routes"`
	}
	require.NoError(t, json.Unmarshal([]byte(result), &payload))
	assert.Equal(t, "Gilroy", payload.From)
	assert.Len(t, payload.Routes, 4)

	result = f.registry.Dispatch("listRoutes", json.RawMessage(`{"from":"Fresno"}`))
	assert.Contains(t, result, "unknown location")
}

func TestGameTools_TravelCost(t *testing.T) {
	f := newGameFixture(t)

	result := f.registry.Dispatch("travelCost", json.RawMessage(`{"from":"Gilroy","to":"Watsonville"}`))
	var payload struct {
		Miles float64 `json:"miles"`
		Cost  float64 `json:"cost"`
	}
	require.NoError(t, json.Unmarshal([]byte(result), &payload))
	assert.Equal(t, 1.0, payload.Cost)
	assert.Greater(t, payload.Miles, 0.0)
}

func TestGameTools_BestRoute(t *testing.T) {
	f := newGameFixture(t)

	result := f.registry.Dispatch("bestRoute", json.RawMessage(`{"start":"Gilroy"}`))
	var tour routes.Tour
	require.NoError(t, json.Unmarshal([]byte(result), &tour))
	assert.Equal(t, 1, tour.Rank)
	require.NotEmpty(t, tour.Route)
	assert.Equal(t, "Gilroy", tour.Route[0])
	assert.Len(t, tour.Route, 5)

	result = f.registry.Dispatch("bestRoute", json.RawMessage(`{"start":"Nowhere"}`))
	assert.Contains(t, result, "unknown location")
}

func TestGameTools_Reset(t *testing.T) {
	f := newGameFixture(t)
	f.registry.Dispatch("setDifficulty", json.RawMessage(`{"level":"hardest"}`))
	require.Equal(t, -6, f.tools.DifficultyBias())
	f.tools.Reset()
	assert.Equal(t, 0, f.tools.DifficultyBias())
}
