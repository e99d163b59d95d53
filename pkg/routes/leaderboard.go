package routes

import (
	"fmt"
	"sort"
)

// Tours are found by exhaustive depth-first enumeration of all (N-1)!
// permutations. That is O(N!) and acceptable only because the center
// graph is small and fixed; maxTourLocations is the hard ceiling past
// which enumeration is refused rather than silently left unbounded.
const maxTourLocations = 9

// Tour is one visiting order over every location, starting from a fixed
// index, optionally closed by a return leg.
type Tour struct {
	Rank  int      `json:"rank"`
	Route []string `json:"route"`
	Cost  float64  `json:"cost"`
	Miles float64  `json:"miles"`
}

// LeaderboardResult is the full ranking for one start location.
type LeaderboardResult struct {
	Start         string `json:"start"`
	IncludeReturn bool   `json:"include_return"`
	Best          *Tour  `json:"best"`
	Leaderboard   []Tour `json:"leaderboard"`
	TourCount     int    `json:"tour_count"`
	Optimal       *Tour  `json:"optimal,omitempty"`
}

// EnumerateTours walks every (N-1)! permutation of the non-start
// locations appended to the start, returning all tours sorted ascending
// by cost. Ties keep DFS enumeration order, which is stable.
func (g *Graph) EnumerateTours(startIdx int, includeReturn bool) ([]Tour, error) {
	if startIdx < 0 || startIdx >= len(g.names) {
		return nil, fmt.Errorf("%w: start index %d", ErrUnknownLocation, startIdx)
	}
	if len(g.names) > maxTourLocations {
		return nil, fmt.Errorf("tour enumeration refused: %d locations exceeds the %d-location ceiling", len(g.names), maxTourLocations)
	}

	n := len(g.names)
	visited := make([]bool, n)
	visited[startIdx] = true
	path := make([]int, 1, n)
	path[0] = startIdx

	var tours []Tour
	var walk func()
	walk = func() {
		if len(path) == n {
			cost, miles := g.pathTotals(path, includeReturn)
			tours = append(tours, Tour{
				Route: g.label(path, includeReturn),
				Cost:  cost,
				Miles: miles,
			})
			return
		}
		for next := 0; next < n; next++ {
			if visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			walk()
			path = path[:len(path)-1]
			visited[next] = false
		}
	}
	walk()

	sort.SliceStable(tours, func(i, j int) bool { return tours[i].Cost < tours[j].Cost })
	for i := range tours {
		tours[i].Rank = i + 1
	}
	return tours, nil
}

// BestTour returns the exact optimum via the same exhaustive search,
// for callers that want a single answer without the full ranking.
func (g *Graph) BestTour(startIdx int, includeReturn bool) (Tour, error) {
	tours, err := g.EnumerateTours(startIdx, includeReturn)
	if err != nil {
		return Tour{}, err
	}
	best := tours[0]
	best.Rank = 1
	return best, nil
}

// Leaderboard ranks every tour from the named start. computeOptimal
// additionally reports the brute-force optimum as a separate entry.
func (g *Graph) Leaderboard(start string, includeReturn, computeOptimal bool) (LeaderboardResult, error) {
	startIdx, ok := g.index[start]
	if !ok {
		return LeaderboardResult{}, fmt.Errorf("%w: %q", ErrUnknownLocation, start)
	}

	tours, err := g.EnumerateTours(startIdx, includeReturn)
	if err != nil {
		return LeaderboardResult{}, err
	}

	result := LeaderboardResult{
		Start:         start,
		IncludeReturn: includeReturn,
		Best:          &tours[0],
		Leaderboard:   tours,
		TourCount:     len(tours),
	}
	if computeOptimal {
		optimal, err := g.BestTour(startIdx, includeReturn)
		if err != nil {
			return LeaderboardResult{}, err
		}
		result.Optimal = &optimal
	}
	return result, nil
}

// pathTotals sums consecutive edge weights over a tour path, plus the
// closing edge when the return leg is included.
func (g *Graph) pathTotals(path []int, includeReturn bool) (cost, miles float64) {
	for i := 0; i < len(path)-1; i++ {
		cost += g.cost[path[i]][path[i+1]]
		miles += g.miles[path[i]][path[i+1]]
	}
	if includeReturn && len(path) > 1 {
		last := path[len(path)-1]
		cost += g.cost[last][path[0]]
		miles += g.miles[last][path[0]]
	}
	return cost, miles
}

func (g *Graph) label(path []int, includeReturn bool) []string {
	route := make([]string, 0, len(path)+1)
	for _, i := range path {
		route = append(route, g.names[i])
	}
	if includeReturn && len(path) > 1 {
		route = append(route, g.names[path[0]])
	}
	return route
}
