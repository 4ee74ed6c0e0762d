package colorset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColors(t *testing.T) {
	colors, err := Colors(3, DefaultSet)
	require.NoError(t, err)
	assert.Equal(t, []string{"#780B51", "#23E391", "#4D119D"}, colors)
}

func TestColorsCycle(t *testing.T) {
	colors, err := Colors(9, "nonseq7")
	require.NoError(t, err)
	require.Len(t, colors, 9)
	assert.Equal(t, colors[0], colors[7])
	assert.Equal(t, colors[1], colors[8])
}

func TestColorsUnknownSet(t *testing.T) {
	_, err := Colors(3, "viridis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not defined")
}

func TestColorsNegative(t *testing.T) {
	_, err := Colors(-1, DefaultSet)
	require.Error(t, err)
}

func TestColorsZero(t *testing.T) {
	colors, err := Colors(0, "seq7")
	require.NoError(t, err)
	assert.Empty(t, colors)
}

func TestStyles(t *testing.T) {
	styles, err := Styles(2, "seq7")
	require.NoError(t, err)
	require.Len(t, styles, 2)
}

func TestSets(t *testing.T) {
	assert.ElementsMatch(t, []string{"nonseq7", "seq7"}, Sets())
}
