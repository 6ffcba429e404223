package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

const (
	East = "east"
	West = "west"
)

// RuntimeConfig 运行时配置
// 功能：在原始配置之外记录运行参数
type RuntimeConfig struct {
	All   Config  // 全部配置（tunnels已按input加载完毕）
	Speed float64 // 每秒真实时间推进的模拟分钟数
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 说明：speed非正时使用每秒1分钟
func NewRuntimeConfig(config Config, speed float64) *RuntimeConfig {
	if speed <= 0 {
		speed = 1
	}
	return &RuntimeConfig{All: config, Speed: speed}
}

// Default 荷兰隧道的默认配置
// 说明：每小时一个周期，东向在:45、西向在:15进入自行车相位
func Default() Config {
	tunnel := func(name, direction string, offset float64) Tunnel {
		return Tunnel{
			Name:      name,
			Direction: direction,
			Offset:    offset,
			LengthMi:  2,
			Phases:    Phases{Clearing: 3, Sweep: 5, Pace: 10, Normal: 15},
			Bikes: Bikes{
				PerMin: 0.25, ReleasedPerMin: 5, PenClose: 3, Mph: 12,
				PenCols: 5, PenRows: 3,
			},
			Cars: Cars{
				PerMin: 1, ReleasedPerMin: 1.5, Mph: 24,
				LOffset: 0, ROffset: 0.5, MergeMins: 0.5,
			},
			Sweep: Escort{Mph: 12},
			Pace:  Escort{Mph: 20},
		}
	}
	return Config{
		Period: 60,
		Layout: Layout{
			Width:         800,
			LaneHeight:    30,
			Gap:           60,
			FadeDist:      100,
			PenMargin:     20,
			PenSlotWidth:  12,
			PenSlotHeight: 12,
			CarGap:        25,
		},
		Tunnels: []Tunnel{
			tunnel("E", East, 45),
			tunnel("W", West, 15),
		},
	}
}

// Validate 检查配置中与排队容量、相位边界无关的基础约束
// 功能：速率、速度、尺寸必须为正，方向合法，隧道名唯一，等候区能容纳一个周期的自行车
// 返回：第一个违反的约束（包装ErrInvalidConfig）
// 说明：容量与相位边界的校验由queue与tunnel在构造时完成
func (c *Config) Validate() error {
	if !positive(c.Period) {
		return fmt.Errorf("%w: period must be positive, got %v", ErrInvalidConfig, c.Period)
	}
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if len(c.Tunnels) == 0 {
		return fmt.Errorf("%w: no tunnels", ErrInvalidConfig)
	}
	if dup := lo.FindDuplicatesBy(c.Tunnels, func(t Tunnel) string { return t.Name }); len(dup) > 0 {
		return fmt.Errorf("%w: duplicate tunnel name %q", ErrInvalidConfig, dup[0].Name)
	}
	for _, t := range c.Tunnels {
		if err := t.Validate(c.Period); err != nil {
			return err
		}
	}
	return nil
}

// Validate 检查画面几何
func (l Layout) Validate() error {
	fields := []lo.Tuple2[string, float64]{
		lo.T2("width", l.Width),
		lo.T2("lane_height", l.LaneHeight),
		lo.T2("fade_dist", l.FadeDist),
		lo.T2("pen_slot_width", l.PenSlotWidth),
		lo.T2("pen_slot_height", l.PenSlotHeight),
		lo.T2("car_gap", l.CarGap),
	}
	for _, f := range fields {
		if !positive(f.B) {
			return fmt.Errorf("%w: layout.%s must be positive, got %v", ErrInvalidConfig, f.A, f.B)
		}
	}
	if l.Gap < 0 || l.PenMargin < 0 {
		return fmt.Errorf("%w: layout gap/pen_margin must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Validate 检查单个隧道
func (t Tunnel) Validate(period float64) error {
	if t.Name == "" {
		return fmt.Errorf("%w: tunnel without name", ErrInvalidConfig)
	}
	if t.Direction != East && t.Direction != West {
		return fmt.Errorf("%w: tunnel %s: direction must be %q or %q, got %q", ErrInvalidConfig, t.Name, East, West, t.Direction)
	}
	fields := []lo.Tuple2[string, float64]{
		lo.T2("length_mi", t.LengthMi),
		lo.T2("bikes.per_min", t.Bikes.PerMin),
		lo.T2("bikes.released_per_min", t.Bikes.ReleasedPerMin),
		lo.T2("bikes.pen_close", t.Bikes.PenClose),
		lo.T2("bikes.mph", t.Bikes.Mph),
		lo.T2("cars.per_min", t.Cars.PerMin),
		lo.T2("cars.released_per_min", t.Cars.ReleasedPerMin),
		lo.T2("cars.mph", t.Cars.Mph),
		lo.T2("cars.merge_mins", t.Cars.MergeMins),
		lo.T2("sweep.mph", t.Sweep.Mph),
		lo.T2("pace.mph", t.Pace.Mph),
	}
	for _, f := range fields {
		if !positive(f.B) {
			return fmt.Errorf("%w: tunnel %s: %s must be positive, got %v", ErrInvalidConfig, t.Name, f.A, f.B)
		}
	}
	if t.Bikes.PenClose >= period {
		return fmt.Errorf("%w: tunnel %s: bikes.pen_close %v must be inside the period %v", ErrInvalidConfig, t.Name, t.Bikes.PenClose, period)
	}
	if t.Cars.LOffset < 0 || t.Cars.ROffset < 0 {
		return fmt.Errorf("%w: tunnel %s: car lane offsets must not be negative", ErrInvalidConfig, t.Name)
	}
	if t.Bikes.PenCols <= 0 || t.Bikes.PenRows <= 0 {
		return fmt.Errorf("%w: tunnel %s: pen grid must have positive dimensions", ErrInvalidConfig, t.Name)
	}
	if n := t.BikesPerPeriod(period); n > t.Bikes.PenCols*t.Bikes.PenRows {
		return fmt.Errorf("%w: tunnel %s: pen %dx%d cannot hold %d bikes", ErrInvalidConfig, t.Name, t.Bikes.PenRows, t.Bikes.PenCols, n)
	}
	if transit := TransitMins(t.LengthMi, t.Cars.Mph); t.Cars.MergeMins >= transit {
		return fmt.Errorf("%w: tunnel %s: cars.merge_mins %v must be shorter than the transit %v", ErrInvalidConfig, t.Name, t.Cars.MergeMins, transit)
	}
	return nil
}

// BikesPerPeriod 每周期自行车数量 = period × per_min
func (t Tunnel) BikesPerPeriod(period float64) int {
	return int(math.Round(period * t.Bikes.PerMin))
}

// CarsPerPeriod 每周期每车道汽车数量 = period × per_min
func (t Tunnel) CarsPerPeriod(period float64) int {
	return int(math.Round(period * t.Cars.PerMin))
}

// TransitMins 以mph速度通过lengthMi英里所需分钟数
func TransitMins(lengthMi, mph float64) float64 {
	return lengthMi / mph * 60
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}
