package tunnel

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hudcostreets/ht-sub001/utils/config"
	"github.com/hudcostreets/ht-sub001/utils/mathutil"
)

var (
	ErrPhaseBoundary = errors.New("phase boundary")
)

// Phase 相位
type Phase int32

const (
	BikesEnter Phase = iota // 自行车进入
	Clearing                // 清空
	Sweep                   // 清道车
	PaceCar                 // 领航车
	Normal                  // 正常通行
)

var phaseNames = [...]string{"bikes-enter", "clearing", "sweep", "pace-car", "normal"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
	return phaseNames[p]
}

// ParsePhase 由名称解析相位
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// Phases 一个周期内的相位划分
// 功能：把[0, period)划分为五个首尾相接、互不重叠的区间
type Phases struct {
	starts [len(phaseNames)]float64
	period float64
}

// NewPhases 创建相位划分
// 参数：cfg-四个边界分钟，period-周期
// 返回：相位划分；边界必须满足0 < clearing < sweep < pace < normal < period，否则返回ErrPhaseBoundary
func NewPhases(cfg config.Phases, period float64) (*Phases, error) {
	p := &Phases{
		starts: [...]float64{0, cfg.Clearing, cfg.Sweep, cfg.Pace, cfg.Normal},
		period: period,
	}
	for i := 1; i < len(p.starts); i++ {
		if !(p.starts[i] > p.starts[i-1]) {
			return nil, fmt.Errorf(
				"%w: %s starts at %v, not after %s at %v",
				ErrPhaseBoundary, Phase(i), p.starts[i], Phase(i-1), p.starts[i-1],
			)
		}
	}
	if last := p.starts[len(p.starts)-1]; !(last < period) {
		return nil, fmt.Errorf("%w: %s starts at %v, outside the period %v", ErrPhaseBoundary, Normal, last, period)
	}
	return p, nil
}

// At 相对分钟所处的相位
// 说明：rel先取模到[0, period)，区间左闭右开
func (p *Phases) At(rel float64) Phase {
	rel = mathutil.FloorMod(rel, p.period)
	i := sort.Search(len(p.starts), func(i int) bool { return p.starts[i] > rel })
	return Phase(i - 1)
}

// Start 相位的起始分钟
func (p *Phases) Start(phase Phase) float64 {
	return p.starts[phase]
}

// End 相位的结束分钟（不含）
func (p *Phases) End(phase Phase) float64 {
	if int(phase) == len(p.starts)-1 {
		return p.period
	}
	return p.starts[phase+1]
}
