// Package game wires the single running game together: the item
// ledger, trip stats, route graph, toast tracker, tool registry, and
// the game master agent.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/nest-trail/internal/services"
	"github.com/jwebster45206/nest-trail/pkg/agent"
	"github.com/jwebster45206/nest-trail/pkg/inventory"
	"github.com/jwebster45206/nest-trail/pkg/prompts"
	"github.com/jwebster45206/nest-trail/pkg/routes"
	"github.com/jwebster45206/nest-trail/pkg/stats"
	"github.com/jwebster45206/nest-trail/pkg/textfilter"
	"github.com/jwebster45206/nest-trail/pkg/toast"
	"github.com/jwebster45206/nest-trail/pkg/tools"
)

// A new game starts with some cash and a full tank.
const (
	startingCash = 100
	startingGas  = 50

	gasDescription = "Fuel for the van. Travel burns it down."
)

// Service owns one game's state. The process hosts a single game at a
// time; Reset starts a fresh one.
type Service struct {
	// mu serializes turns and resets. A turn holds it for its full
	// duration so a concurrent Reset cannot reseed state while the
	// turn's tool calls are still landing.
	mu        sync.Mutex
	ledger    *inventory.Ledger
	stats     *stats.Tracker
	graph     *routes.Graph
	toasts    *toast.Tracker
	gameTools *tools.GameTools
	agent     *agent.Agent
	filter    *textfilter.Filter
	logger    *slog.Logger
}

func NewService(llm services.LLMService, logger *slog.Logger) (*Service, error) {
	ledger := inventory.NewLedger()
	tracker := stats.NewTracker(ledger)
	graph := routes.Default()
	toasts := toast.NewTracker()

	registry := tools.NewRegistry(toasts, logger)
	gameTools, err := tools.NewGameTools(registry, ledger, tracker, graph)
	if err != nil {
		return nil, fmt.Errorf("failed to register game tools: %w", err)
	}

	s := &Service{
		ledger:    ledger,
		stats:     tracker,
		graph:     graph,
		toasts:    toasts,
		gameTools: gameTools,
		agent:     agent.New(llm, registry, prompts.GameMaster, logger),
		filter:    textfilter.New(),
		logger:    logger,
	}
	if err := s.seed(); err != nil {
		return nil, err
	}
	return s, nil
}

// seed stocks a fresh game's inventory.
func (s *Service) seed() error {
	if err := s.ledger.SetCash(startingCash); err != nil {
		return err
	}
	return s.ledger.AddItem(stats.GasItemName, gasDescription, startingGas)
}

// SendTurn runs one player turn through the agent and scrubs the
// narration before it reaches the player.
func (s *Service) SendTurn(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response, err := s.agent.SendTurn(ctx, message)
	if err != nil {
		return "", err
	}
	return s.filter.Clean(response), nil
}

func (s *Service) Inventory() inventory.Snapshot {
	return s.ledger.List()
}

func (s *Service) Stats() stats.Snapshot {
	return s.stats.Get()
}

// Toasts returns the notification events newer than sinceID.
func (s *Service) Toasts(sinceID int64) []toast.Event {
	return s.toasts.Since(sinceID)
}

// RouteLeaderboard ranks every tour of the centers from the given
// start.
func (s *Service) RouteLeaderboard(start string, includeReturn, computeOptimal bool) (routes.LeaderboardResult, error) {
	return s.graph.Leaderboard(start, includeReturn, computeOptimal)
}

// Locations returns the center names in graph order.
func (s *Service) Locations() []string {
	return s.graph.Names()
}

// Reset starts a fresh game: restocked inventory, zeroed trip stats
// with a new spawn, default difficulty, cleared toasts, and a blank
// conversation. Toast IDs keep counting so polling clients never see an
// ID reused.
func (s *Service) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Reset()
	if err := s.seed(); err != nil {
		return err
	}
	s.stats.Reset()
	s.gameTools.Reset()
	s.toasts.Reset()
	s.agent.Reset()
	s.logger.Info("Game reset", "spawn", s.stats.Get().CurrentLocation)
	return nil
}
