package queue

import "github.com/hudcostreets/ht-sub001/utils/geometry"

// PenGrid 自行车等候区网格
// 功能：把队列位置映射为等候区中的二维格子
// 说明：第0行紧贴R车道、第0列离入口最近；东向等候区位于车道下方（自上而下填充），
// 西向位于车道上方（自下而上填充），两者都保证“离入口最近”的位置先被占用
type PenGrid struct {
	Cols, Rows int
	SlotWidth  float64
	SlotHeight float64
	Margin     float64 // 首列与入口的水平距离
	RowStart   float64 // 首行与车道中心线的竖直距离
	Dir        float64 // 行驶方向，+1向x正方向，-1向x负方向
	TopDown    bool    // true：行号增大时y增大
}

// Capacity 格子总数
func (g PenGrid) Capacity() int {
	return g.Cols * g.Rows
}

// Slot 第index个队列位置相对入口的偏移
// 说明：row = index / cols，col = index % cols；超出容量属于配置校验遗漏，直接panic
func (g PenGrid) Slot(index int) geometry.Point {
	if index < 0 || index >= g.Capacity() {
		log.Panicf("pen slot %d out of %dx%d grid", index, g.Rows, g.Cols)
	}
	row, col := index/g.Cols, index%g.Cols
	dy := g.RowStart + float64(row)*g.SlotHeight
	if !g.TopDown {
		dy = -dy
	}
	return geometry.Point{
		X: -g.Dir * (g.Margin + float64(col)*g.SlotWidth),
		Y: dy,
	}
}
