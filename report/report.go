package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/TIANLI0/MaskCoverage/model"
)

const (
	bannerWidth = 50
	// 每个方块代表 2%，满条 50 格，只显示前 25 格
	percentPerBlock = 2
	barSpan         = 50
	barVisible      = 25
)

// Sort 按百分比降序排列，百分比相同时保持类别表顺序
func Sort(c *model.Coverage) []model.ClassCoverage {
	sorted := make([]model.ClassCoverage, len(c.Classes))
	copy(sorted, c.Classes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percent > sorted[j].Percent
	})
	return sorted
}

// Bar 生成固定宽度的文本条
func Bar(percent float64) string {
	filled := int(percent / percentPerBlock)
	filled = max(0, min(filled, barSpan))
	bar := []rune(strings.Repeat("█", filled) + strings.Repeat("░", barSpan-filled))
	return string(bar[:barVisible])
}

// Render 输出覆盖率报告
func Render(w io.Writer, c *model.Coverage) error {
	rule := strings.Repeat("=", bannerWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", rule)
	b.WriteString("  AREA COVERAGE (%)\n")
	fmt.Fprintf(&b, "%s\n", rule)
	for _, cc := range Sort(c) {
		fmt.Fprintf(&b, "  %-20s: %6.2f%% |%s|\n", cc.Name, cc.Percent, Bar(cc.Percent))
	}
	fmt.Fprintf(&b, "%s\n\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}
