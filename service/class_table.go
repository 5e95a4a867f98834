package service

import (
	"fmt"
	"strings"

	"github.com/TIANLI0/MaskCoverage/model"
)

// ChannelOrder 颜色三元组的通道顺序
type ChannelOrder int

const (
	BGR ChannelOrder = iota // OpenCV 约定，掩码生成工具使用
	RGB
)

func (o ChannelOrder) String() string {
	if o == RGB {
		return "rgb"
	}
	return "bgr"
}

// ParseChannelOrder 解析配置中的通道顺序
func ParseChannelOrder(s string) (ChannelOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bgr":
		return BGR, nil
	case "rgb":
		return RGB, nil
	}
	return BGR, fmt.Errorf("unknown channel order %q", s)
}

// convert 将三元组从 from 顺序转换到 to 顺序
func convert(c [3]uint8, from, to ChannelOrder) [3]uint8 {
	if from == to {
		return c
	}
	return [3]uint8{c[2], c[1], c[0]}
}

// defaultClasses 六个固定地物类别，颜色三元组按类别表声明的通道顺序解释
var defaultClasses = [...]model.ClassInfo{
	{ID: 1, Name: "Residential Area", Color: [3]uint8{128, 0, 0}},
	{ID: 2, Name: "Road", Color: [3]uint8{0, 128, 0}},
	{ID: 3, Name: "River", Color: [3]uint8{0, 0, 128}},
	{ID: 4, Name: "Forest", Color: [3]uint8{0, 128, 128}},
	{ID: 5, Name: "Unused Land", Color: [3]uint8{128, 128, 0}},
	{ID: 6, Name: "Agricultural Area", Color: [3]uint8{128, 0, 128}},
}

// ClassTable 只读的类别表，构造后不可修改
type ClassTable struct {
	order   ChannelOrder
	classes []model.ClassInfo
	byID    map[uint8]int
	byColor map[[3]uint8]int
}

// NewClassTable 创建类别表，颜色按 order 顺序解释
func NewClassTable(order ChannelOrder, classes ...model.ClassInfo) (*ClassTable, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("class table is empty")
	}

	t := &ClassTable{
		order:   order,
		classes: make([]model.ClassInfo, len(classes)),
		byID:    make(map[uint8]int, len(classes)),
		byColor: make(map[[3]uint8]int, len(classes)),
	}
	copy(t.classes, classes)

	names := make(map[string]struct{}, len(classes))
	for i, c := range t.classes {
		if c.ID == 0 {
			return nil, fmt.Errorf("class %q: label id 0 is reserved for background", c.Name)
		}
		if _, ok := t.byID[c.ID]; ok {
			return nil, fmt.Errorf("duplicate label id %d", c.ID)
		}
		if _, ok := t.byColor[c.Color]; ok {
			return nil, fmt.Errorf("duplicate color %v", c.Color)
		}
		if _, ok := names[c.Name]; ok {
			return nil, fmt.Errorf("duplicate class name %q", c.Name)
		}
		names[c.Name] = struct{}{}
		t.byID[c.ID] = i
		t.byColor[c.Color] = i
	}

	return t, nil
}

// DefaultClassTable 返回六类地物的默认类别表。
// order 声明掩码生成工具书写调色板时的通道顺序：bgr 下 (128,0,0) 为蓝色，rgb 下为红色。
func DefaultClassTable(order ChannelOrder) *ClassTable {
	t, err := NewClassTable(order, defaultClasses[:]...)
	if err != nil {
		panic(err)
	}
	return t
}

// Order 调色板的通道顺序
func (t *ClassTable) Order() ChannelOrder {
	return t.order
}

// Len 类别数量
func (t *ClassTable) Len() int {
	return len(t.classes)
}

// Classes 返回类别定义的副本
func (t *ClassTable) Classes() []model.ClassInfo {
	out := make([]model.ClassInfo, len(t.classes))
	copy(out, t.classes)
	return out
}

// Names 按表顺序返回类别名
func (t *ClassTable) Names() []string {
	names := make([]string, len(t.classes))
	for i, c := range t.classes {
		names[i] = c.Name
	}
	return names
}

// lookupID 按标签值查找类别下标
func (t *ClassTable) lookupID(id uint8) (int, bool) {
	i, ok := t.byID[id]
	return i, ok
}

// lookupColor 按颜色查找类别下标，color 的顺序为 order
func (t *ClassTable) lookupColor(color [3]uint8, order ChannelOrder) (int, bool) {
	i, ok := t.byColor[convert(color, order, t.order)]
	return i, ok
}
