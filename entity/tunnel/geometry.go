package tunnel

import (
	"github.com/hudcostreets/ht-sub001/entity/queue"
	"github.com/hudcostreets/ht-sub001/utils/config"
	"github.com/hudcostreets/ht-sub001/utils/geometry"
)

// layout 单方向隧道在画面中的几何
// 功能：由画面配置推导入口、出口、车道中心线与速度换算
// 说明：西向隧道在上、东向在下；东向沿x正方向行驶，L车道在上、R车道在下；
// 西向沿x负方向行驶，R车道在上、L车道在下，两者的R车道都靠外侧，自行车等候区在R车道外侧
type layout struct {
	cfg      config.Layout
	lengthMi float64
	dir      float64 // +1或-1
	entrance float64 // 入口x
	exit     float64 // 出口x
	ly, ry   float64 // L/R车道中心线y
}

func newLayout(cfg config.Layout, t config.Tunnel) *layout {
	l := &layout{cfg: cfg, lengthMi: t.LengthMi}
	h := cfg.LaneHeight
	if t.Direction == config.East {
		top := 2*h + cfg.Gap
		l.dir, l.entrance, l.exit = 1, 0, cfg.Width
		l.ly, l.ry = top+0.5*h, top+1.5*h
	} else {
		l.dir, l.entrance, l.exit = -1, cfg.Width, 0
		l.ry, l.ly = 0.5*h, 1.5*h
	}
	return l
}

// laneY 车道中心线
func (l *layout) laneY(name string) float64 {
	if name == "L" {
		return l.ly
	}
	return l.ry
}

// transitMins 以mph通过隧道的分钟数
func (l *layout) transitMins(mph float64) float64 {
	return config.TransitMins(l.lengthMi, mph)
}

// pxPerMin 以mph行驶时每分钟移动的像素
func (l *layout) pxPerMin(mph float64) float64 {
	return l.cfg.Width / l.transitMins(mph)
}

// fadeMins 以mph行驶淡入/淡出距离所需分钟数
func (l *layout) fadeMins(mph float64) float64 {
	return l.cfg.FadeDist / l.pxPerMin(mph)
}

// entranceOf 车道入口
func (l *layout) entranceOf(y float64) geometry.Point {
	return geometry.Point{X: l.entrance, Y: y}
}

// exitOf 车道出口
func (l *layout) exitOf(y float64) geometry.Point {
	return geometry.Point{X: l.exit, Y: y}
}

// ahead 沿行驶方向前进d像素（d为负表示后退）
func (l *layout) ahead(p geometry.Point, d float64) geometry.Point {
	return geometry.Point{X: p.X + l.dir*d, Y: p.Y}
}

// penGrid 自行车等候区网格：紧贴R车道外侧，第0列离入口pen_margin
func (l *layout) penGrid(bikes config.Bikes) queue.PenGrid {
	return queue.PenGrid{
		Cols:       bikes.PenCols,
		Rows:       bikes.PenRows,
		SlotWidth:  l.cfg.PenSlotWidth,
		SlotHeight: l.cfg.PenSlotHeight,
		Margin:     l.cfg.PenMargin,
		RowStart:   l.cfg.LaneHeight,
		Dir:        l.dir,
		TopDown:    l.dir > 0,
	}
}
