package report

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/TIANLI0/MaskCoverage/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *model.Coverage {
	return &model.Coverage{
		Classes: []model.ClassCoverage{
			{ID: 1, Name: "Residential Area", Percent: 10},
			{ID: 2, Name: "Road", Percent: 25},
			{ID: 3, Name: "River", Percent: 0},
			{ID: 4, Name: "Forest", Percent: 55.5},
			{ID: 5, Name: "Unused Land", Percent: 0},
			{ID: 6, Name: "Agricultural Area", Percent: 9.5},
		},
	}
}

func TestSort_DescendingStableTies(t *testing.T) {
	c := sample()
	var names []string
	for _, cc := range Sort(c) {
		names = append(names, cc.Name)
	}
	assert.Equal(t, []string{
		"Forest", "Road", "Residential Area", "Agricultural Area", "River", "Unused Land",
	}, names)
	assert.Equal(t, "Residential Area", c.Classes[0].Name)
}

func TestBar(t *testing.T) {
	tests := map[float64]int{
		0:     0,
		1.99:  0,
		25:    12,
		49.99: 24,
		50:    25,
		100:   25,
	}
	for pct, full := range tests {
		bar := Bar(pct)
		assert.Equal(t, 25, utf8.RuneCountInString(bar), pct)
		assert.Equal(t, full, strings.Count(bar, "█"), pct)
		assert.Equal(t, 25-full, strings.Count(bar, "░"), pct)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample()))

	lines := strings.Split(buf.String(), "\n")
	rule := strings.Repeat("=", 50)
	require.Len(t, lines, 13)
	assert.Equal(t, "", lines[0])
	assert.Equal(t, rule, lines[1])
	assert.Equal(t, "  AREA COVERAGE (%)", lines[2])
	assert.Equal(t, rule, lines[3])
	assert.Equal(t, "  Forest              :  55.50% |"+strings.Repeat("█", 25)+"|", lines[4])
	assert.Equal(t, "  Road                :  25.00% |"+strings.Repeat("█", 12)+strings.Repeat("░", 13)+"|", lines[5])
	assert.Equal(t, rule, lines[10])
	assert.Equal(t, "", lines[11])
	assert.Equal(t, "", lines[12])
}
