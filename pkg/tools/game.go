package tools

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/jwebster45206/nest-trail/pkg/inventory"
	"github.com/jwebster45206/nest-trail/pkg/routes"
	"github.com/jwebster45206/nest-trail/pkg/stats"
)

// difficultyBias maps the allowed difficulty presets to the modifier
// silently added to every difficulty roll.
var difficultyBias = map[string]int{
	"easy":    2,
	"normal":  0,
	"hard":    -2,
	"harder":  -4,
	"hardest": -6,
}

// GameTools binds the game tool handlers to the shared ledger, stats
// tracker, and route graph.
type GameTools struct {
	ledger *inventory.Ledger
	stats  *stats.Tracker
	graph  *routes.Graph

	mu   sync.Mutex
	bias int

	rollD20 func() int // injectable for tests
}

// NewGameTools creates the tool set and registers every game tool.
func NewGameTools(r *Registry, ledger *inventory.Ledger, st *stats.Tracker, graph *routes.Graph) (*GameTools, error) {
	gt := &GameTools{
		ledger:  ledger,
		stats:   st,
		graph:   graph,
		rollD20: func() int { return rand.Intn(20) + 1 },
	}
	if err := gt.register(r); err != nil {
		return nil, err
	}
	return gt, nil
}

// DifficultyBias returns the process-wide modifier currently applied to
// difficulty rolls.
func (gt *GameTools) DifficultyBias() int {
	gt.mu.Lock()
	defer gt.mu.Unlock()
	return gt.bias
}

// Reset restores the default difficulty.
func (gt *GameTools) Reset() {
	gt.mu.Lock()
	defer gt.mu.Unlock()
	gt.bias = 0
}

func (gt *GameTools) register(r *Registry) error {
	defs := []*Tool{
		{
			Name:        "addItem",
			Description: "Adds an item to the player's inventory.",
			Params: []Param{
				{Name: "name", Kind: ParamString, Description: "Name of the item", Required: true},
				{Name: "description", Kind: ParamString, Description: "Description of the item", Required: true},
				{Name: "count", Kind: ParamInteger, Description: "Number of items to add", Required: true},
			},
			Handler:  gt.addItem,
			Notifier: notifyAlways,
		},
		{
			Name:        "removeItem",
			Description: "Removes an item from the player's inventory.",
			Params: []Param{
				{Name: "name", Kind: ParamString, Description: "Name of the item", Required: true},
				{Name: "count", Kind: ParamInteger, Description: "Number of items to remove", Required: true},
			},
			Handler: gt.removeItem,
			Notifier: func(args map[string]any, result any) any {
				r, ok := result.(removeItemResult)
				if !ok || r.Status != inventory.RemoveOK {
					return nil // failed removals do not toast
				}
				return r.Message
			},
		},
		{
			Name:        "addMoney",
			Description: "Increases the player's money by a positive amount.",
			Params: []Param{
				{Name: "amount", Kind: ParamInteger, Description: "Positive amount to add, in dollars", Required: true},
			},
			Handler:  gt.addMoney,
			Notifier: notifyAlways,
		},
		{
			Name:        "removeMoney",
			Description: "Decreases the player's money by a positive amount.",
			Params: []Param{
				{Name: "amount", Kind: ParamInteger, Description: "Positive amount to remove, in dollars", Required: true},
			},
			Handler: gt.removeMoney,
			Notifier: func(args map[string]any, result any) any {
				r, ok := result.(cashResult)
				if !ok || r.Status != inventory.CashOK {
					return nil
				}
				return r.Message
			},
		},
		{
			Name:        "getMoney",
			Description: "Returns the player's current money amount.",
			Handler:     gt.getMoney,
		},
		{
			Name:        "listInventory",
			Description: "Returns the list of inventory items with counts, plus cash.",
			Handler:     gt.listInventory,
		},
		{
			Name:        "getStats",
			Description: "Returns the elapsed trip time in minutes and the player's current location.",
			Handler:     gt.getStats,
		},
		{
			Name: "updateStats",
			Description: "Advances the trip: adds elapsed time, moves the player, and consumes gas " +
				"for any distance traveled. Rejected if the player lacks the gas.",
			Params: []Param{
				{Name: "timeElapsed", Kind: ParamInteger, Description: "Minutes of game time that passed", Required: true},
				{Name: "newLocation", Kind: ParamString, Description: "The player's new location", Required: true},
				{Name: "distanceTraveled", Kind: ParamNumber, Description: "Miles traveled; omit or 0 when not moving", Required: false},
			},
			Handler: gt.updateStats,
			Notifier: func(args map[string]any, result any) any {
				r, ok := result.(advanceToolResult)
				if !ok || !r.Advance.OK {
					return nil
				}
				return r.toastMessage()
			},
		},
		{
			Name:        "rollDice",
			Description: "Rolls a 20-sided die and returns the result.",
			Handler:     gt.rollDice,
			Notifier:    notifyAlways,
		},
		{
			Name: "rollDifficulty",
			Description: "Rolls a d20 for a skill or event check, applying an optional modifier plus " +
				"the process-wide difficulty bias. Reports the raw roll and the modified total.",
			Params: []Param{
				{Name: "modifier", Kind: ParamInteger, Description: "Situational modifier added to the roll", Required: false},
			},
			Handler:  gt.rollDifficulty,
			Notifier: notifyAlways,
		},
		{
			Name:        "setDifficulty",
			Description: "Sets the game difficulty. Allowed levels: easy, normal, hard, harder, hardest.",
			Params: []Param{
				{Name: "level", Kind: ParamString, Description: "One of: easy, normal, hard, harder, hardest", Required: true},
			},
			Handler:  gt.setDifficulty,
			Notifier: notifyAlways,
		},
		{
			Name:        "listRoutes",
			Description: "Lists every destination reachable from a location with its travel cost and road miles.",
			Params: []Param{
				{Name: "from", Kind: ParamString, Description: "Starting location name", Required: true},
			},
			Handler: gt.listRoutes,
		},
		{
			Name:        "travelCost",
			Description: "Returns the road miles and travel cost between two locations.",
			Params: []Param{
				{Name: "from", Kind: ParamString, Description: "Starting location name", Required: true},
				{Name: "to", Kind: ParamString, Description: "Destination location name", Required: true},
			},
			Handler: gt.travelCost,
		},
		{
			Name:        "bestRoute",
			Description: "Computes the cheapest tour that visits every center starting from a location.",
			Params: []Param{
				{Name: "start", Kind: ParamString, Description: "Starting location name", Required: true},
				{Name: "includeReturn", Kind: ParamBoolean, Description: "Whether the tour returns to the start", Required: false},
			},
			Handler: gt.bestRoute,
		},
	}

	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// notifyAlways toasts every result. Used by tools whose handlers only
// return on success (validation failures surface as errors upstream).
func notifyAlways(args map[string]any, result any) any {
	if ct, ok := result.(contextText); ok {
		return ct.ContextText()
	}
	return result
}

type addItemArgs struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

func (gt *GameTools) addItem(raw json.RawMessage) (any, error) {
	var args addItemArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if err := gt.ledger.AddItem(args.Name, args.Description, args.Count); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Item %q added successfully.", args.Name), nil
}

type removeItemArgs struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// removeItemResult carries the ledger status alongside the narrative
// message so notifiers branch on the enum, not on message text.
type removeItemResult struct {
	Status  inventory.RemoveStatus
	Message string
}

func (r removeItemResult) ContextText() string { return r.Message }

func (gt *GameTools) removeItem(raw json.RawMessage) (any, error) {
	var args removeItemArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	status, remaining, err := gt.ledger.RemoveItem(args.Name, args.Count)
	if err != nil {
		return nil, err
	}
	switch status {
	case inventory.RemoveNotFound:
		return removeItemResult{
			Status:  status,
			Message: fmt.Sprintf("Item %q not found in inventory.", args.Name),
		}, nil
	case inventory.RemoveInsufficient:
		return removeItemResult{
			Status:  status,
			Message: fmt.Sprintf("Not enough %s to remove. Available count: %d", args.Name, remaining),
		}, nil
	default:
		return removeItemResult{
			Status:  status,
			Message: fmt.Sprintf("Removed %d x %q. Remaining: %d.", args.Count, args.Name, remaining),
		}, nil
	}
}

type moneyArgs struct {
	Amount int `json:"amount"`
}

// cashResult mirrors removeItemResult for the cash operations.
type cashResult struct {
	Status  inventory.CashStatus
	Message string
}

func (r cashResult) ContextText() string { return r.Message }

func (gt *GameTools) addMoney(raw json.RawMessage) (any, error) {
	var args moneyArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	balance, err := gt.ledger.AddCash(args.Amount)
	if err != nil {
		return nil, err
	}
	return cashResult{
		Status:  inventory.CashOK,
		Message: fmt.Sprintf("Money increased by %d. Balance: %d", args.Amount, balance),
	}, nil
}

func (gt *GameTools) removeMoney(raw json.RawMessage) (any, error) {
	var args moneyArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	status, balance, err := gt.ledger.RemoveCash(args.Amount)
	if err != nil {
		return nil, err
	}
	if status == inventory.CashInsufficient {
		return cashResult{
			Status:  status,
			Message: fmt.Sprintf("Insufficient funds. Current balance: %d", balance),
		}, nil
	}
	return cashResult{
		Status:  status,
		Message: fmt.Sprintf("Money decreased by %d. Balance: %d", args.Amount, balance),
	}, nil
}

func (gt *GameTools) getMoney(json.RawMessage) (any, error) {
	return map[string]any{"money": gt.ledger.CashBalance()}, nil
}

func (gt *GameTools) listInventory(json.RawMessage) (any, error) {
	return gt.ledger.List(), nil
}

func (gt *GameTools) getStats(json.RawMessage) (any, error) {
	return gt.stats.Get(), nil
}

type updateStatsArgs struct {
	TimeElapsed      int     `json:"timeElapsed"`
	NewLocation      string  `json:"newLocation"`
	DistanceTraveled float64 `json:"distanceTraveled"`
}

type advanceToolResult struct {
	Args    updateStatsArgs
	Advance stats.AdvanceResult
}

func (r advanceToolResult) ContextText() string { return r.Advance.Message }

func (r advanceToolResult) toastMessage() string {
	if r.Advance.FuelConsumed > 0 {
		return fmt.Sprintf("Traveled to %s (%d gas used)", r.Args.NewLocation, r.Advance.FuelConsumed)
	}
	return fmt.Sprintf("Now at %s", r.Args.NewLocation)
}

func (gt *GameTools) updateStats(raw json.RawMessage) (any, error) {
	var args updateStatsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	res, err := gt.stats.Advance(args.TimeElapsed, args.NewLocation, args.DistanceTraveled)
	if err != nil {
		return nil, err
	}
	return advanceToolResult{Args: args, Advance: res}, nil
}

type rollResult struct {
	Roll int `json:"roll"`
}

func (r rollResult) ContextText() string {
	return fmt.Sprintf("Rolled a %d on a d20.", r.Roll)
}

func (gt *GameTools) rollDice(json.RawMessage) (any, error) {
	return rollResult{Roll: gt.rollD20()}, nil
}

type difficultyRollArgs struct {
	Modifier int `json:"modifier"`
}

type difficultyRollResult struct {
	Raw      int `json:"raw"`
	Modifier int `json:"modifier"`
	Bias     int `json:"bias"`
	Total    int `json:"total"`
}

func (r difficultyRollResult) ContextText() string {
	return fmt.Sprintf("Rolled a d20: raw %d, modifier %+d, difficulty bias %+d. Total: %d.",
		r.Raw, r.Modifier, r.Bias, r.Total)
}

func (gt *GameTools) rollDifficulty(raw json.RawMessage) (any, error) {
	var args difficultyRollArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	gt.mu.Lock()
	bias := gt.bias
	gt.mu.Unlock()

	roll := gt.rollD20()
	return difficultyRollResult{
		Raw:      roll,
		Modifier: args.Modifier,
		Bias:     bias,
		Total:    roll + args.Modifier + bias,
	}, nil
}

type setDifficultyArgs struct {
	Level string `json:"level"`
}

type setDifficultyResult struct {
	Level string `json:"level"`
	Bias  int    `json:"bias"`
}

func (r setDifficultyResult) ContextText() string {
	return fmt.Sprintf("Difficulty set to %s (bias %+d).", r.Level, r.Bias)
}

func (gt *GameTools) setDifficulty(raw json.RawMessage) (any, error) {
	var args setDifficultyArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	level := strings.ToLower(strings.TrimSpace(args.Level))
	bias, ok := difficultyBias[level]
	if !ok {
		return nil, fmt.Errorf("unknown difficulty %q; allowed: %s", args.Level, strings.Join(difficultyLevels(), ", "))
	}
	gt.mu.Lock()
	gt.bias = bias
	gt.mu.Unlock()
	return setDifficultyResult{Level: level, Bias: bias}, nil
}

func difficultyLevels() []string {
	levels := make([]string, 0, len(difficultyBias))
	for level := range difficultyBias {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	return levels
}

type listRoutesArgs struct {
	From string `json:"from"`
}

func (gt *GameTools) listRoutes(raw json.RawMessage) (any, error) {
	var args listRoutesArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	edges, err := gt.graph.EdgesFrom(args.From)
	if err != nil {
		return nil, err
	}
	return map[string]any{"from": args.From, "routes": edges}, nil
}

type travelCostArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (gt *GameTools) travelCost(raw json.RawMessage) (any, error) {
	var args travelCostArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	miles, cost := gt.graph.Pairwise(args.From, args.To)
	return map[string]any{"from": args.From, "to": args.To, "miles": miles, "cost": cost}, nil
}

type bestRouteArgs struct {
	Start         string `json:"start"`
	IncludeReturn bool   `json:"includeReturn"`
}

func (gt *GameTools) bestRoute(raw json.RawMessage) (any, error) {
	var args bestRouteArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	startIdx, ok := gt.graph.Index(args.Start)
	if !ok {
		return nil, fmt.Errorf("%w: %q", routes.ErrUnknownLocation, args.Start)
	}
	tour, err := gt.graph.BestTour(startIdx, args.IncludeReturn)
	if err != nil {
		return nil, err
	}
	return tour, nil
}
