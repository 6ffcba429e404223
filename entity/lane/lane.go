// 车道：按到达时刻排序的车辆序列，支持跨周期的前后相邻查找与并道计算
package lane

import (
	"fmt"

	"github.com/hudcostreets/ht-sub001/utils/container"
	"github.com/hudcostreets/ht-sub001/utils/mathutil"
)

// Lane 车道实体
// 功能：记录一个周期内每辆车进入车道的相对分钟，按时间升序维护
// 说明：周期意义下首尾相接，最早到达的车的“前一辆”是上一周期最后到达的车
type Lane struct {
	name     string
	y        float64 // 车道中心线的纵坐标
	period   float64
	arrivals *container.List[int, struct{}] // 值为车辆编号
}

// New 创建车道
// 参数：name-车道名，y-中心线纵坐标，period-周期，arrivals-按车辆编号的到达分钟
func New(name string, y, period float64, arrivals []float64) *Lane {
	l := &Lane{
		name:     name,
		y:        y,
		period:   period,
		arrivals: &container.List[int, struct{}]{ID: name},
	}
	for i, a := range arrivals {
		l.arrivals.Insert(&container.ListNode[int, struct{}]{
			S:     mathutil.FloorMod(a, period),
			Value: i,
		})
	}
	return l
}

func (l *Lane) String() string {
	return fmt.Sprintf("Lane{%s, y:%v, n:%d}", l.name, l.y, l.arrivals.Len())
}

// Name 车道名
func (l *Lane) Name() string {
	return l.name
}

// Y 中心线纵坐标
func (l *Lane) Y() float64 {
	return l.y
}

// Len 每周期车辆数
func (l *Lane) Len() int {
	return l.arrivals.Len()
}

// Arrivals 按时间升序的到达分钟
func (l *Lane) Arrivals() []float64 {
	return l.arrivals.Keys()
}

// Order 按到达先后排列的车辆编号
func (l *Lane) Order() []int {
	return l.arrivals.Values()
}

// Neighbors 时刻t前后最近的到达
// 功能：在周期意义下查找严格早于t的最后一辆与严格晚于t的第一辆
// 返回：prev、next为展开后的分钟（可能小于0或不小于period），使prev < t < next；车道为空时ok为false
func (l *Lane) Neighbors(t float64) (prev, next float64, ok bool) {
	if l.arrivals.Len() == 0 {
		return 0, 0, false
	}
	base := t - mathutil.FloorMod(t, l.period)
	t -= base
	if node := l.arrivals.Before(t); node != nil {
		prev = node.S
	} else {
		prev = l.arrivals.Last().S - l.period
	}
	if node := l.arrivals.After(t); node != nil {
		next = node.S
	} else {
		next = l.arrivals.First().S + l.period
	}
	return prev + base, next + base, true
}
