package pricing

import (
	"errors"
	"sort"
)

var ErrUnknownFeature = errors.New("unknown feature")

// Billable feature names
const (
	FeatureVideo = "video"
	FeatureGame  = "game"
)

// Table maps billable features to their credit cost. Built once at startup;
// reads are lock-free because the map is never mutated afterwards.
type Table struct {
	costs map[string]int
}

// NewTable builds a cost table. Non-positive costs fall back to the defaults.
func NewTable(videoCost, gameCost int) *Table {
	if videoCost <= 0 {
		videoCost = 5
	}
	if gameCost <= 0 {
		gameCost = 10
	}
	return &Table{costs: map[string]int{
		FeatureVideo: videoCost,
		FeatureGame:  gameCost,
	}}
}

// Default returns the table with the standard costs
func Default() *Table {
	return NewTable(5, 10)
}

// CostOf returns the credit cost of a feature
func (t *Table) CostOf(feature string) (int, error) {
	cost, ok := t.costs[feature]
	if !ok {
		return 0, ErrUnknownFeature
	}
	return cost, nil
}

// Features returns the known feature names, sorted
func (t *Table) Features() []string {
	names := make([]string, 0, len(t.costs))
	for name := range t.costs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
