package service

import (
	"time"

	"github.com/TIANLI0/MaskCoverage/model"
	"github.com/TIANLI0/MaskCoverage/utils"
	"go.uber.org/zap"
)

// CoverageCalculator 根据类别表统计掩码中各类别的面积占比
type CoverageCalculator struct {
	table *ClassTable
}

func NewCoverageCalculator(table *ClassTable) *CoverageCalculator {
	return &CoverageCalculator{table: table}
}

// Table 计算器使用的类别表
func (c *CoverageCalculator) Table() *ClassTable {
	return c.table
}

// ComputeCoverage 使用默认 BGR 类别表计算掩码文件的覆盖率（类别名 -> 百分比）
func ComputeCoverage(path string) (map[string]float64, error) {
	cov, err := NewCoverageCalculator(DefaultClassTable(BGR)).ComputeFile(path)
	if err != nil {
		return nil, err
	}
	return cov.Map(), nil
}

// ComputeFile 读取掩码文件并计算覆盖率
func (c *CoverageCalculator) ComputeFile(path string) (*model.Coverage, error) {
	startTime := time.Now()

	mask, err := LoadMask(path)
	if err != nil {
		return nil, err
	}

	cov, err := c.Compute(mask)
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("coverage computed",
		zap.String("path", path),
		zap.String("variant", cov.Variant),
		zap.Int("width", cov.Width),
		zap.Int("height", cov.Height),
		zap.Duration("duration", time.Since(startTime)))

	return cov, nil
}

// Compute 计算内存掩码的覆盖率，不修改输入
func (c *CoverageCalculator) Compute(mask *Mask) (*model.Coverage, error) {
	if err := mask.Validate(); err != nil {
		return nil, err
	}
	variant, _ := mask.Variant()

	var counts []int
	if variant == VariantLabel {
		counts = c.countLabels(mask)
	} else {
		counts = c.countColors(mask)
	}

	total := mask.Width * mask.Height
	cov := &model.Coverage{
		MD5:         mask.MD5,
		Variant:     variant,
		Width:       mask.Width,
		Height:      mask.Height,
		TotalPixels: total,
		Classes:     make([]model.ClassCoverage, c.table.Len()),
	}
	for i, info := range c.table.classes {
		cov.Classes[i] = model.ClassCoverage{
			ID:      info.ID,
			Name:    info.Name,
			Pixels:  counts[i],
			Percent: percent(counts[i], total),
		}
	}

	return cov, nil
}

// countLabels 统计每个已知标签值的像素数
func (c *CoverageCalculator) countLabels(mask *Mask) []int {
	var hist [256]int
	for _, v := range mask.Pix {
		hist[v]++
	}

	counts := make([]int, c.table.Len())
	for id, n := range hist {
		if n == 0 {
			continue
		}
		if i, ok := c.table.lookupID(uint8(id)); ok {
			counts[i] = n
		}
	}
	return counts
}

// countColors 先统计图中实际出现的颜色，再逐一与类别表匹配，未知颜色忽略
func (c *CoverageCalculator) countColors(mask *Mask) []int {
	unique := make(map[[3]uint8]int)
	pix := mask.Pix
	for off := 0; off+2 < len(pix); off += 3 {
		unique[[3]uint8{pix[off], pix[off+1], pix[off+2]}]++
	}

	counts := make([]int, c.table.Len())
	for color, n := range unique {
		if i, ok := c.table.lookupColor(color, mask.Order); ok {
			counts[i] = n
		}
	}

	utils.Logger.Debug("distinct colors tallied", zap.Int("colors", len(unique)))
	return counts
}

// percent 返回 pixels/total*100 并四舍五入到两位小数，使用整数运算避免浮点误差
func percent(pixels, total int) float64 {
	if total <= 0 || pixels <= 0 {
		return 0
	}
	p, t := int64(pixels), int64(total)
	hundredths := (p*20000 + t) / (2 * t)
	return float64(hundredths) / 100
}
