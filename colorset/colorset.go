// Package colorset provides named color palettes for plots and terminal
// output. A sequential set is for data where order is meaningful, a
// nonsequential set for when it is not.
package colorset

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
)

// DefaultSet is the color set used when the caller has no ordering to convey.
const DefaultSet = "nonseq7"

var colorSets = map[string][]string{
	"nonseq7": {"#780B51", "#23E391", "#4D119D", "#FFB359", "#FF85C3", "#196DC1", "#8FF63B"},
	"seq7":    {"#0A2F51", "#0F596B", "#16837A", "#1D9A6C", "#3B544", "#92CB5D", "#DEDB85"},
}

// Sets returns the names of the available color sets.
func Sets() []string {
	names := make([]string, 0, len(colorSets))
	for name := range colorSets {
		names = append(names, name)
	}
	return names
}

// Colors returns n hex colors from the named set. When n exceeds the number
// of levels in the set, the colors cycle and some will repeat. An unknown
// set name is an error.
func Colors(n int, set string) ([]string, error) {
	cs, ok := colorSets[set]
	if !ok {
		return nil, errors.Newf("colorset: color set %q is not defined", set)
	}
	if n < 0 {
		return nil, errors.Newf("colorset: n must be non-negative, got %d", n)
	}
	colors := make([]string, n)
	for i := range colors {
		colors[i] = cs[i%len(cs)]
	}
	return colors, nil
}

// Styles returns the same colors as lipgloss foreground styles for terminal
// rendering.
func Styles(n int, set string) ([]lipgloss.Style, error) {
	colors, err := Colors(n, set)
	if err != nil {
		return nil, err
	}
	styles := make([]lipgloss.Style, n)
	for i, c := range colors {
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return styles, nil
}
