package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/nest-trail/pkg/routes"
)

// Validates a route graph YAML file beyond what routes.Load enforces,
// then prints a travel summary so authors can eyeball the numbers.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <routes.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &GraphValidator{}

	graph, err := validator.validateFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	for _, w := range validator.warnings {
		fmt.Printf("Warning: %s\n", w)
	}

	fmt.Println("Route graph is valid!")
	printSummary(graph)
}

type GraphValidator struct {
	errors   []string
	warnings []string
}

type graphFile struct {
	Locations []string    `yaml:"locations"`
	Cost      [][]float64 `yaml:"cost"`
	Miles     [][]float64 `yaml:"miles"`
}

func (v *GraphValidator) validateFile(filename string) (*routes.Graph, error) {
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	// routes.Load covers shape, non-negative weights, zero diagonal,
	// and duplicate names.
	graph, err := routes.Load(data)
	if err != nil {
		return nil, fmt.Errorf("file %s failed graph loading: %w", filename, err)
	}

	var gf graphFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filename, err)
	}

	v.errors = nil
	v.warnings = nil
	v.checkSymmetry("cost", gf.Locations, gf.Cost)
	v.checkSymmetry("miles", gf.Locations, gf.Miles)
	v.validateOffDiagonal("cost", gf.Locations, gf.Cost)
	v.validateOffDiagonal("miles", gf.Locations, gf.Miles)

	if len(v.errors) > 0 {
		return nil, fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return graph, nil
}

// The matrices are independently authored tables and may legitimately
// be asymmetric, but a mismatch is often a typo, so flag it without
// failing the file.
func (v *GraphValidator) checkSymmetry(name string, locations []string, m [][]float64) {
	for i := range m {
		for j := i + 1; j < len(m[i]); j++ {
			if m[i][j] != m[j][i] {
				v.addWarning(fmt.Sprintf("%s matrix is asymmetric between %q and %q: %v vs %v",
					name, locations[i], locations[j], m[i][j], m[j][i]))
			}
		}
	}
}

// A zero weight between two distinct locations would make them free to
// travel between, which the tour ranking cannot distinguish from a
// missing entry.
func (v *GraphValidator) validateOffDiagonal(name string, locations []string, m [][]float64) {
	for i := range m {
		for j := range m[i] {
			if i != j && m[i][j] == 0 {
				v.addError(fmt.Sprintf("%s matrix has zero weight between distinct locations %q and %q",
					name, locations[i], locations[j]))
			}
		}
	}
}

func (v *GraphValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *GraphValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, msg)
}

func printSummary(g *routes.Graph) {
	names := g.Names()
	fmt.Printf("\nLocations (%d): %s\n", len(names), strings.Join(names, ", "))

	for _, name := range names {
		edges, err := g.EdgesFrom(name)
		if err != nil {
			continue
		}
		fmt.Printf("\nFrom %s:\n", name)
		for _, e := range edges {
			fmt.Printf("  -> %-12s cost %.1f, %.1f miles\n", e.To, e.Cost, e.Miles)
		}
	}

	result, err := g.Leaderboard(names[0], false, false)
	if err != nil || result.Best == nil {
		return
	}
	fmt.Printf("\nBest tour from %s (%d candidates): %s (cost %.1f, %.1f miles)\n",
		names[0], result.TourCount, strings.Join(result.Best.Route, " -> "), result.Best.Cost, result.Best.Miles)
}
