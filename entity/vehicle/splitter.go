package vehicle

import (
	"fmt"

	"github.com/hudcostreets/ht-sub001/utils/curve"
)

// HandoffMins 片段交接时的过渡时长（分钟）
const HandoffMins = 1e-3

// Split 跨周期拆分
// 功能：生命周期超出一个周期（resetTime >= period）的车辆无法用单条周期曲线表示，
// 将其替换为stub与continuation两个片段
// 参数：v-待检查的车辆
// 返回：stub、continuation；不需要拆分时均为nil
// 算法说明：
// 1. 补齐原始路点，resetTime取最后一个路点的本地时间
// 2. overflow = resetTime - period，shift = overflow + 1
// 3. stub：占据原出生时刻，保留[0, shift)内的全部路点，在shift处隐去并回到起点，直到周期结束
// 4. continuation：出生时刻后移shift，所有路点时间前移shift，覆盖原轨迹的[shift, resetTime]，最后一个路点恰好落在period-1
// 5. [period-1, period)留给交接：continuation在交接位置不可见地等待，随后显现
// 说明：只变换已经算好的路点，不重新计算排队
func Split(v *Vehicle) (stub, cont *Vehicle, err error) {
	raw, err := v.RawWaypoints()
	if err != nil {
		return nil, nil, err
	}
	filled, err := FillForward(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("vehicle %v: %w", v.id, err)
	}
	period := v.period
	resetTime := filled[len(filled)-1].Time
	if resetTime < period {
		return nil, nil, nil
	}
	// 拆分前的本地时间线必须有序，借非周期曲线校验并用于边界插值
	line, err := curve.New(filled, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: vehicle %v: unordered lifecycle: %v", ErrTrajectory, v.id, err)
	}
	if filled[0].Time < 0 {
		return nil, nil, fmt.Errorf("%w: vehicle %v: lifecycle starts before spawn (%v)", ErrTrajectory, v.id, filled[0].Time)
	}
	shift := resetTime - period + 1
	if shift+HandoffMins >= period {
		return nil, nil, fmt.Errorf("%w: vehicle %v: lifecycle of %v minutes spans more than two periods", ErrTrajectory, v.id, resetTime)
	}

	handoff := line.At(shift)
	hidden := handoff
	hidden.Opacity = 0

	// stub：shift之前的路点全部保留，交接前的淡出路点只在其后没有原路点时补上
	stubRaw := make([]RawWaypoint, 0, len(filled)+3)
	last := filled[0].Time
	for _, w := range filled {
		if w.Time < shift {
			stubRaw = append(stubRaw, Full(w.Time, w.Value))
			last = w.Time
		}
	}
	if last < shift-HandoffMins {
		stubRaw = append(stubRaw, Full(shift-HandoffMins, line.At(shift-HandoffMins)))
	}
	origin := filled[0].Value
	origin.Opacity = 0
	origin.Lifecycle = Origin
	vanish := hidden
	vanish.Lifecycle = Done
	stubRaw = append(stubRaw,
		Full(shift, vanish),
		Full(shift+HandoffMins, origin),
	)

	// continuation
	contRaw := make([]RawWaypoint, 0, len(filled)+2)
	contRaw = append(contRaw, Full(0, handoff))
	for _, w := range filled {
		if w.Time > shift {
			contRaw = append(contRaw, Full(w.Time-shift, w.Value))
		}
	}
	contRaw = append(contRaw, Full(period-HandoffMins, hidden))

	kind := v.Kind()
	stub = NewFragment(v.id.WithPart(PartStub), v.spawn, period, kind, stubRaw)
	cont = NewFragment(v.id.WithPart(PartContinuation), v.spawn+shift, period, kind, contRaw)
	log.Debugf("split %v: reset at %.3f, continuation spawns %.3f later", v.id, resetTime, shift)
	return stub, cont, nil
}
