// Package routes models the fixed graph of Digital NEST centers and
// computes per-pair travel info and ranked tours over all of them.
package routes

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var rawGraph []byte

// ErrUnknownLocation is returned for location names not in the graph.
var ErrUnknownLocation = errors.New("unknown location")

// Edge describes travel from one location to another.
type Edge struct {
	To    string  `json:"to"`
	Cost  float64 `json:"cost"`
	Miles float64 `json:"miles"`
}

// Graph is an immutable set of named locations with a cost weight matrix
// and an independently authored road-distance matrix. Cost ranks tours;
// miles feeds narration and fuel math. Callers must not conflate the two.
type Graph struct {
	names []string
	cost  [][]float64
	miles [][]float64
	index map[string]int
}

type graphFile struct {
	Locations []string    `yaml:"locations"`
	Cost      [][]float64 `yaml:"cost"`
	Miles     [][]float64 `yaml:"miles"`
}

// Load parses a YAML graph definition and validates matrix shape.
func Load(data []byte) (*Graph, error) {
	var gf graphFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("failed to parse graph data: %w", err)
	}

	n := len(gf.Locations)
	if n == 0 {
		return nil, fmt.Errorf("graph has no locations")
	}
	for _, m := range [][][]float64{gf.Cost, gf.Miles} {
		if len(m) != n {
			return nil, fmt.Errorf("matrix has %d rows, want %d", len(m), n)
		}
		for i, row := range m {
			if len(row) != n {
				return nil, fmt.Errorf("matrix row %d has %d columns, want %d", i, len(row), n)
			}
			if m[i][i] != 0 {
				return nil, fmt.Errorf("matrix diagonal must be zero at %d", i)
			}
			for j, v := range row {
				if v < 0 {
					return nil, fmt.Errorf("negative weight at [%d][%d]", i, j)
				}
			}
		}
	}

	index := make(map[string]int, n)
	for i, name := range gf.Locations {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate location %q", name)
		}
		index[name] = i
	}

	return &Graph{
		names: gf.Locations,
		cost:  gf.Cost,
		miles: gf.Miles,
		index: index,
	}, nil
}

var (
	defaultGraph     *Graph
	defaultGraphOnce sync.Once
)

// Default returns the graph built from the embedded center data.
func Default() *Graph {
	defaultGraphOnce.Do(func() {
		g, err := Load(rawGraph)
		if err != nil {
			// The embedded data is fixed at build time; a parse failure
			// is a broken build, not a runtime condition.
			panic(fmt.Sprintf("routes: embedded graph data invalid: %v", err))
		}
		defaultGraph = g
	})
	return defaultGraph
}

// Names returns the location names in authored order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Index resolves a location name to its matrix index.
func (g *Graph) Index(name string) (int, bool) {
	i, ok := g.index[name]
	return i, ok
}

// EdgesFrom returns every other location reachable from the named one,
// sorted ascending by cost, then miles.
func (g *Graph) EdgesFrom(name string) ([]Edge, error) {
	from, ok := g.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	edges := make([]Edge, 0, len(g.names)-1)
	for to := range g.names {
		if to == from {
			continue
		}
		edges = append(edges, Edge{
			To:    g.names[to],
			Cost:  g.cost[from][to],
			Miles: g.miles[from][to],
		})
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Cost != edges[j].Cost {
			return edges[i].Cost < edges[j].Cost
		}
		return edges[i].Miles < edges[j].Miles
	})
	return edges, nil
}

// Pairwise returns the road miles and cost weight for a single ordered
// pair. Unrecognized names yield a zeroed result rather than an error;
// this feeds narrative generation, not critical state.
func (g *Graph) Pairwise(from, to string) (miles, cost float64) {
	i, ok := g.index[from]
	if !ok {
		return 0, 0
	}
	j, ok := g.index[to]
	if !ok {
		return 0, 0
	}
	return g.miles[i][j], g.cost[i][j]
}
