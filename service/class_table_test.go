package service

import (
	"testing"

	"github.com/TIANLI0/MaskCoverage/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClassTable_Names(t *testing.T) {
	table := DefaultClassTable(BGR)
	assert.Equal(t, []string{
		"Residential Area", "Road", "River", "Forest", "Unused Land", "Agricultural Area",
	}, table.Names())
	assert.Equal(t, BGR, table.Order())
	assert.Equal(t, 6, table.Len())
}

func TestDefaultClassTable_OrderDeclaresPaletteReading(t *testing.T) {
	bgr := DefaultClassTable(BGR)
	rgb := DefaultClassTable(RGB)
	assert.Equal(t, bgr.Classes(), rgb.Classes())
	assert.Equal(t, RGB, rgb.Order())

	// 解码后的 BGR 像素 (0,0,128) 为红色
	red := [3]uint8{0, 0, 128}
	i, ok := bgr.lookupColor(red, BGR)
	require.True(t, ok)
	assert.Equal(t, "River", bgr.Classes()[i].Name)

	i, ok = rgb.lookupColor(red, BGR)
	require.True(t, ok)
	assert.Equal(t, "Residential Area", rgb.Classes()[i].Name)
}

func TestClassTable_ClassesIsCopy(t *testing.T) {
	table := DefaultClassTable(BGR)
	classes := table.Classes()
	classes[0].Name = "Mutated"
	classes[0].Color = [3]uint8{1, 2, 3}

	assert.Equal(t, "Residential Area", table.Classes()[0].Name)
	_, ok := table.lookupColor([3]uint8{1, 2, 3}, BGR)
	assert.False(t, ok)
}

func TestClassTable_ConstructorCopiesInput(t *testing.T) {
	in := []model.ClassInfo{{ID: 1, Name: "Water", Color: [3]uint8{255, 0, 0}}}
	table, err := NewClassTable(RGB, in...)
	require.NoError(t, err)

	in[0].Name = "Land"
	assert.Equal(t, []string{"Water"}, table.Names())
}

func TestNewClassTable_Rejects(t *testing.T) {
	tests := map[string][]model.ClassInfo{
		"empty":          nil,
		"zero id":        {{ID: 0, Name: "Bg", Color: [3]uint8{0, 0, 0}}},
		"duplicate id":   {{ID: 1, Name: "A", Color: [3]uint8{1, 0, 0}}, {ID: 1, Name: "B", Color: [3]uint8{2, 0, 0}}},
		"duplicate rgb":  {{ID: 1, Name: "A", Color: [3]uint8{1, 0, 0}}, {ID: 2, Name: "B", Color: [3]uint8{1, 0, 0}}},
		"duplicate name": {{ID: 1, Name: "A", Color: [3]uint8{1, 0, 0}}, {ID: 2, Name: "A", Color: [3]uint8{2, 0, 0}}},
	}
	for name, classes := range tests {
		_, err := NewClassTable(BGR, classes...)
		assert.Error(t, err, name)
	}
}

func TestParseChannelOrder(t *testing.T) {
	o, err := ParseChannelOrder("RGB")
	require.NoError(t, err)
	assert.Equal(t, RGB, o)

	o, err = ParseChannelOrder("")
	require.NoError(t, err)
	assert.Equal(t, BGR, o)

	_, err = ParseChannelOrder("hsv")
	assert.Error(t, err)

	assert.Equal(t, "bgr", BGR.String())
	assert.Equal(t, "rgb", RGB.String())
}
