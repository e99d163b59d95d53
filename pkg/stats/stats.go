// Package stats tracks the running trip: elapsed game time and the
// player's current location. Travel consumes fuel from the item ledger.
package stats

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/jwebster45206/nest-trail/pkg/inventory"
)

// GasItemName is the ledger item consumed by travel.
const GasItemName = "Gas"

// The van gets 30 miles to the gallon, and one unit of gas is a fifth
// of a gallon.
const (
	milesPerGallon = 30
	unitsPerGallon = 5
)

// spawnLocations are the centers a new game may start from.
var spawnLocations = []string{
	"Modesto",
	"Stockton",
	"Salinas",
	"Gilroy",
}

// Snapshot is a point-in-time view of the trip stats.
type Snapshot struct {
	ElapsedMinutes  int    `json:"elapsed_minutes"`
	CurrentLocation string `json:"current_location"`
}

// AdvanceResult reports the outcome of an Advance call. A refused
// advance (fuel too low) leaves time and location untouched; OK is false
// and Message explains the refusal for the narrative layer.
type AdvanceResult struct {
	OK           bool
	FuelConsumed int
	Message      string
}

// Tracker owns elapsed time and current location. Travel draws fuel from
// the ledger; if the draw is refused the whole advance is rejected.
type Tracker struct {
	mu              sync.RWMutex
	elapsedMinutes  int
	currentLocation string
	ledger          *inventory.Ledger
}

func NewTracker(ledger *inventory.Ledger) *Tracker {
	return &Tracker{
		currentLocation: spawnLocations[rand.Intn(len(spawnLocations))],
		ledger:          ledger,
	}
}

// FuelUnits returns the gas units consumed by traveling the given
// distance in miles. Direction does not matter.
func FuelUnits(distanceMiles float64) int {
	gallons := math.Abs(distanceMiles) / milesPerGallon
	return int(math.Round(gallons * unitsPerGallon))
}

func (t *Tracker) Get() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{
		ElapsedMinutes:  t.elapsedMinutes,
		CurrentLocation: t.currentLocation,
	}
}

// Advance adds travel time and moves the player. When distanceTraveled is
// positive, the corresponding fuel is removed from the ledger first; if
// that fails the advance is rejected as a whole. On success the returned
// message includes the current inventory so the caller can feed it back
// into context without a second lookup.
func (t *Tracker) Advance(timeElapsedMinutes int, newLocation string, distanceTraveled float64) (AdvanceResult, error) {
	if timeElapsedMinutes < 0 {
		return AdvanceResult{}, fmt.Errorf("%w: elapsed time cannot be negative, got %d", inventory.ErrValidation, timeElapsedMinutes)
	}
	if newLocation == "" {
		return AdvanceResult{}, fmt.Errorf("%w: location cannot be empty", inventory.ErrValidation)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var consumed int
	if units := FuelUnits(distanceTraveled); units > 0 {
		status, _, err := t.ledger.RemoveItem(GasItemName, units)
		if err != nil {
			return AdvanceResult{}, err
		}
		if status != inventory.RemoveOK {
			return AdvanceResult{
				Message: "Cannot travel because gas is too low. Time and location remain unchanged. Please alert the player of this issue.",
			}, nil
		}
		consumed = units
	}

	t.elapsedMinutes += timeElapsedMinutes
	t.currentLocation = newLocation
	return AdvanceResult{
		OK:           true,
		FuelConsumed: consumed,
		Message:      "Update successful. Time and location updated. Current player inventory: " + t.ledger.Summary(),
	}, nil
}

// Reset zeroes elapsed time and re-rolls a random starting location.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elapsedMinutes = 0
	t.currentLocation = spawnLocations[rand.Intn(len(spawnLocations))]
}
