package vehicle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hudcostreets/ht-sub001/utils/curve"
	"github.com/hudcostreets/ht-sub001/utils/geometry"
	"github.com/hudcostreets/ht-sub001/utils/mathutil"
	"github.com/samber/lo"
)

var (
	ErrTrajectory = errors.New("trajectory error")
)

// Waypoint 车辆状态曲线上的关键帧
type Waypoint = curve.Waypoint[State]

// Curve 车辆状态曲线
type Curve = curve.Curve[State]

// RawWaypoint 未归一化的原始路点
// 功能：生成路点的代码只需写出发生变化的字段，其余字段由前一个路点补齐
// 说明：Time为车辆本地时间（分钟，出生时刻为0），允许为负或超过一个周期
type RawWaypoint struct {
	Time      float64
	X, Y      *float64
	Opacity   *float64
	Lifecycle *LifecycleState
}

// At 只含时间的原始路点
func At(t float64) RawWaypoint {
	return RawWaypoint{Time: t}
}

// Full 完整指定的原始路点
func Full(t float64, s State) RawWaypoint {
	return At(t).Pos(s.Pos()).Op(s.Opacity).In(s.Lifecycle)
}

// Pos 设置位置
func (w RawWaypoint) Pos(p geometry.Point) RawWaypoint {
	w.X, w.Y = lo.ToPtr(p.X), lo.ToPtr(p.Y)
	return w
}

// Op 设置透明度
func (w RawWaypoint) Op(opacity float64) RawWaypoint {
	w.Opacity = lo.ToPtr(opacity)
	return w
}

// In 设置生命周期阶段
func (w RawWaypoint) In(s LifecycleState) RawWaypoint {
	w.Lifecycle = lo.ToPtr(s)
	return w
}

func (w RawWaypoint) complete() bool {
	return w.X != nil && w.Y != nil && w.Opacity != nil && w.Lifecycle != nil
}

// FillForward 向前补齐字段
// 功能：每个路点未设置的字段沿用前一个（已补齐的）路点
// 参数：raw-原始路点，首个路点必须完整
// 返回：完整路点，顺序与输入一致
func FillForward(raw []RawWaypoint) ([]Waypoint, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no waypoints", curve.ErrInvalidCurve)
	}
	if !raw[0].complete() {
		return nil, fmt.Errorf("%w: first waypoint at %v is not fully specified", curve.ErrInvalidCurve, raw[0].Time)
	}
	res := make([]Waypoint, len(raw))
	var prev State
	for i, w := range raw {
		s := prev
		if w.X != nil {
			s.X = *w.X
		}
		if w.Y != nil {
			s.Y = *w.Y
		}
		if w.Opacity != nil {
			s.Opacity = *w.Opacity
		}
		if w.Lifecycle != nil {
			s.Lifecycle = *w.Lifecycle
		}
		res[i] = Waypoint{Time: w.Time, Value: s}
		prev = s
	}
	return res, nil
}

// Build 将原始路点整理为周期曲线
// 功能：车辆轨迹构建流水线
// 参数：id-车辆标识（用于错误信息），raw-原始路点，period-周期
// 返回：周期为period的状态曲线
// 算法说明：
// 1. 向前补齐字段
// 2. 将时间按向下取整取模映射到[0, period)
// 3. 按归一化后的时间稳定排序
// 4. 去重：时间相同（相差不超过mathutil.Eps）的路点保留原始顺序中靠后的一个（后声明的控制点优先）
// 5. 校验严格递增，失败说明上游生成路点有误，返回ErrTrajectory
func Build(id ID, raw []RawWaypoint, period float64) (*Curve, error) {
	filled, err := FillForward(raw)
	if err != nil {
		return nil, fmt.Errorf("vehicle %v: %w", id, err)
	}
	for i := range filled {
		filled[i].Time = mathutil.FloorMod(filled[i].Time, period)
	}
	sort.SliceStable(filled, func(i, j int) bool {
		return filled[i].Time < filled[j].Time
	})
	deduped := make([]Waypoint, 0, len(filled))
	for _, w := range filled {
		if n := len(deduped); n > 0 && mathutil.AlmostEqual(deduped[n-1].Time, w.Time) {
			deduped[n-1] = w
			continue
		}
		deduped = append(deduped, w)
	}
	for i, w := range deduped {
		if w.Time < 0 || w.Time >= period {
			return nil, fmt.Errorf("%w: vehicle %v: waypoint time %v outside [0, %v)", ErrTrajectory, id, w.Time, period)
		}
		if i > 0 && !(w.Time > deduped[i-1].Time) {
			return nil, fmt.Errorf("%w: vehicle %v: waypoint times %v and %v collide", ErrTrajectory, id, deduped[i-1].Time, w.Time)
		}
	}
	c, err := curve.New(deduped, period)
	if err != nil {
		return nil, fmt.Errorf("vehicle %v: %w", id, err)
	}
	return c, nil
}
