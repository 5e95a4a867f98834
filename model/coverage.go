package model

// ClassInfo 地物类别定义
type ClassInfo struct {
	ID    uint8    `json:"id"`
	Name  string   `json:"name"`
	Color [3]uint8 `json:"color"` // 按调色板声明的通道顺序
}

// ClassCoverage 单个类别的覆盖率
type ClassCoverage struct {
	ID      uint8   `json:"id"`
	Name    string  `json:"name"`
	Pixels  int     `json:"pixels"`
	Percent float64 `json:"percent"`
}

// Coverage 掩码覆盖率结果，Classes 按类别表顺序排列且包含全部类别
type Coverage struct {
	MD5         string          `json:"md5,omitempty"`
	Variant     string          `json:"variant"` // label, color
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	TotalPixels int             `json:"total_pixels"`
	Classes     []ClassCoverage `json:"classes"`
}

// Map 返回类别名到百分比的映射
func (c *Coverage) Map() map[string]float64 {
	m := make(map[string]float64, len(c.Classes))
	for _, cc := range c.Classes {
		m[cc.Name] = cc.Percent
	}
	return m
}

// Percent 返回指定类别的百分比，未知类别返回 0
func (c *Coverage) Percent(name string) float64 {
	for _, cc := range c.Classes {
		if cc.Name == name {
			return cc.Percent
		}
	}
	return 0
}

// Total 所有类别百分比之和
func (c *Coverage) Total() float64 {
	sum := 0.0
	for _, cc := range c.Classes {
		sum += cc.Percent
	}
	return sum
}

// CoverageResponse 覆盖率响应
type CoverageResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *Coverage `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
