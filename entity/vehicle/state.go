package vehicle

import (
	"fmt"

	"github.com/hudcostreets/ht-sub001/utils/geometry"
)

// LifecycleState 车辆生命周期阶段
type LifecycleState int32

const (
	Origin     LifecycleState = iota // 起点（不可见，驶入前）
	Queued                           // 排队等候
	Dequeueing                       // 放行中（向入口移动）
	Transiting                       // 隧道内行驶
	Exiting                          // 驶出出口
	Done                             // 完成（不可见）
)

var lifecycleNames = [...]string{"origin", "queued", "dequeueing", "transiting", "exiting", "done"}

func (s LifecycleState) String() string {
	if s < 0 || int(s) >= len(lifecycleNames) {
		return fmt.Sprintf("LifecycleState(%d)", int32(s))
	}
	return lifecycleNames[s]
}

// ParseLifecycleState 由名称解析生命周期阶段
func ParseLifecycleState(name string) (LifecycleState, error) {
	for i, n := range lifecycleNames {
		if n == name {
			return LifecycleState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown lifecycle state %q", name)
}

// MarshalText 序列化为名称，JSON帧中以字符串出现
func (s LifecycleState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 由名称反序列化
func (s *LifecycleState) UnmarshalText(text []byte) error {
	v, err := ParseLifecycleState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// State 车辆的可视状态
// 功能：曲线上插值的值类型，包含位置、透明度与生命周期标签
// 说明：只有X、Y、Opacity参与插值；Lifecycle始终取接收者（即较早路点）的值，不做混合
type State struct {
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Opacity   float64        `json:"opacity"`
	Lifecycle LifecycleState `json:"state"`
}

func (s State) String() string {
	return fmt.Sprintf("State{(%.2f, %.2f) %v opacity=%.2f}", s.X, s.Y, s.Lifecycle, s.Opacity)
}

// Pos 位置
func (s State) Pos() geometry.Point {
	return geometry.Point{X: s.X, Y: s.Y}
}

func (s State) Add(o State) State {
	return State{X: s.X + o.X, Y: s.Y + o.Y, Opacity: s.Opacity + o.Opacity, Lifecycle: s.Lifecycle}
}

func (s State) Sub(o State) State {
	return State{X: s.X - o.X, Y: s.Y - o.Y, Opacity: s.Opacity - o.Opacity, Lifecycle: s.Lifecycle}
}

func (s State) Scale(k float64) State {
	return State{X: s.X * k, Y: s.Y * k, Opacity: s.Opacity * k, Lifecycle: s.Lifecycle}
}
