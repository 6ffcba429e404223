// 周期关键帧曲线：以时间为键的路点序列，支持跨周期边界的回绕插值
package curve

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hudcostreets/ht-sub001/utils/mathutil"
)

var (
	ErrInvalidCurve = errors.New("invalid curve")
)

// Value 可插值的代数值类型
// 功能：约束曲线上的值支持逐分量加、减、数乘
// 说明：非数值字段（如状态标签）由接收者一方保留，插值时即取较早路点的标签
type Value[T any] interface {
	Add(o T) T
	Sub(o T) T
	Scale(k float64) T
}

// Rule 插值规则
// 参数：from-区间起点路点，to-区间终点路点（时间已做周期平移），t-查询时间（与from同一时间基准）
// 返回：t时刻的值
// 说明：规则挂在区间起点上，可以只依赖起点值和已流逝时间（例如按固定速率衰减），不必向终点混合
type Rule[T Value[T]] func(from, to Waypoint[T], t float64) T

// Waypoint 关键帧
type Waypoint[T Value[T]] struct {
	Time   float64 // 时间（分钟）
	Value  T       // 值
	Interp Rule[T] // 自定义插值规则，nil表示线性插值
}

// Linear 默认线性插值：按流逝时间比例逐分量混合
func Linear[T Value[T]](from, to Waypoint[T], t float64) T {
	ratio := mathutil.Clamp((t-from.Time)/(to.Time-from.Time), 0, 1)
	return from.Value.Add(to.Value.Sub(from.Value).Scale(ratio))
}

// Hold 阶梯插值：区间内保持起点的值
func Hold[T Value[T]](from, _ Waypoint[T], _ float64) T {
	return from.Value
}

// Curve 关键帧曲线
// 功能：给定严格递增的路点序列，计算任意时刻的插值结果
// 说明：period>0时为周期曲线，最后一个路点到首个路点（平移+period）之间同样是有效插值区间；
// period==0时为非周期曲线，定义域外取首/尾值
type Curve[T Value[T]] struct {
	points []Waypoint[T]
	period float64
}

// New 创建曲线
// 功能：校验路点并构建曲线
// 参数：points-路点（必须非空且按时间严格递增），period-周期（0表示非周期）
// 返回：曲线指针；路点为空、乱序、重复时间或周期不合法时返回ErrInvalidCurve
// 说明：去重与排序必须在构造之前完成，这里不做任何修正
func New[T Value[T]](points []Waypoint[T], period float64) (*Curve[T], error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no waypoints", ErrInvalidCurve)
	}
	if period < 0 {
		return nil, fmt.Errorf("%w: negative period %v", ErrInvalidCurve, period)
	}
	for i := 1; i < len(points); i++ {
		if !(points[i].Time > points[i-1].Time) {
			return nil, fmt.Errorf(
				"%w: waypoint %d at %v is not after waypoint %d at %v",
				ErrInvalidCurve, i, points[i].Time, i-1, points[i-1].Time,
			)
		}
	}
	if period > 0 {
		first, last := points[0].Time, points[len(points)-1].Time
		if first < 0 || last >= period {
			return nil, fmt.Errorf(
				"%w: waypoints span [%v, %v] outside period [0, %v)",
				ErrInvalidCurve, first, last, period,
			)
		}
	}
	c := &Curve[T]{
		points: make([]Waypoint[T], len(points)),
		period: period,
	}
	copy(c.points, points)
	return c, nil
}

// Period 周期，0表示非周期
func (c *Curve[T]) Period() float64 {
	return c.period
}

// Points 路点副本
func (c *Curve[T]) Points() []Waypoint[T] {
	points := make([]Waypoint[T], len(c.points))
	copy(points, c.points)
	return points
}

// Len 路点数量
func (c *Curve[T]) Len() int {
	return len(c.points)
}

// At 计算t时刻的值
// 算法说明：
// 1. 周期曲线先将t按向下取整取模映射到[0, period)
// 2. 二分查找首个time>=t的路点
// 3. 命中路点（相差不超过mathutil.Eps，含首尾回绕）时原样返回该路点的值，
// 状态切换必须恰好发生在声明的时刻，不能因为换算时间的舍入误差晚一步
// 4. 未找到：周期曲线在末路点与首路点+period之间插值，否则取末值
// 5. 落在首路点之前：周期曲线在末路点-period与首路点之间插值，否则取首值
// 6. 其余情况在前后相邻路点之间插值
func (c *Curve[T]) At(t float64) T {
	if c.period > 0 {
		t = mathutil.FloorMod(t, c.period)
	}
	n := len(c.points)
	i := sort.Search(n, func(i int) bool { return c.points[i].Time >= t })
	if j, ok := c.hit(t, i); ok {
		return c.points[j].Value
	}
	switch {
	case i == n:
		last := c.points[n-1]
		if c.period <= 0 || n == 1 {
			return last.Value
		}
		return interpolate(last, shift(c.points[0], c.period), t)
	case i == 0:
		first := c.points[0]
		if c.period <= 0 || n == 1 {
			return first.Value
		}
		return interpolate(shift(c.points[n-1], -c.period), first, t)
	default:
		return interpolate(c.points[i-1], c.points[i], t)
	}
}

// hit 判断t是否命中路点，i为首个time>=t的路点下标
func (c *Curve[T]) hit(t float64, i int) (int, bool) {
	n := len(c.points)
	if i < n && mathutil.AlmostEqual(c.points[i].Time, t) {
		return i, true
	}
	if i > 0 && mathutil.AlmostEqual(c.points[i-1].Time, t) {
		return i - 1, true
	}
	if c.period > 0 {
		if i == n && mathutil.AlmostEqual(c.points[0].Time+c.period, t) {
			return 0, true
		}
		if i == 0 && mathutil.AlmostEqual(c.points[n-1].Time-c.period, t) {
			return n - 1, true
		}
	}
	return 0, false
}

func shift[T Value[T]](p Waypoint[T], dt float64) Waypoint[T] {
	p.Time += dt
	return p
}

func interpolate[T Value[T]](from, to Waypoint[T], t float64) T {
	if from.Interp != nil {
		return from.Interp(from, to, t)
	}
	return Linear(from, to, t)
}
