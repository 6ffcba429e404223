package curve

import "math"

// Scalar 标量值，用于排队长度等一维曲线
type Scalar float64

func (s Scalar) Add(o Scalar) Scalar { return s + o }
func (s Scalar) Sub(o Scalar) Scalar { return s - o }
func (s Scalar) Scale(k float64) Scalar { return Scalar(float64(s) * k) }

// Decay 按固定速率线性衰减的插值规则
// 功能：从区间起点的值出发，每分钟减少rate，最低为floor
// 参数：rate-每分钟衰减量，floor-下限
// 说明：结果只取决于起点值与流逝时间，与终点记录的样本无关
func Decay(rate, floor float64) Rule[Scalar] {
	return func(from, _ Waypoint[Scalar], t float64) Scalar {
		v := float64(from.Value) - rate*(t-from.Time)
		return Scalar(math.Max(v, floor))
	}
}
