package vehicle

import (
	"sync/atomic"

	"github.com/hudcostreets/ht-sub001/utils/mathutil"
)

// Plan 车辆轨迹方案
// 功能：每种车辆（自行车、汽车、清道车、领航车）只负责给出自己的原始路点
// 说明：归一化、曲线持有、出生时间换算都在Vehicle中统一完成
type Plan interface {
	Kind() string                         // 车辆类型
	RawWaypoints() ([]RawWaypoint, error) // 本地时间下的原始路点
}

// fragment 拆分产生的片段，路点已预先给定
type fragment struct {
	kind string
	raw  []RawWaypoint
}

func (f fragment) Kind() string {
	return f.kind
}

func (f fragment) RawWaypoints() ([]RawWaypoint, error) {
	return f.raw, nil
}

// Vehicle 车辆
// 功能：持有标识、出生时间、轨迹方案以及惰性构建的状态曲线
// 说明：曲线以相对分钟为时间轴（路点时间=出生时刻+本地时间），查询时只需一次取模；
// 曲线通过原子指针替换，重建过程中并发的查询只会看到旧曲线或新曲线
type Vehicle struct {
	id     ID
	spawn  float64 // 出生时刻（相对分钟，[0, period)），本地时钟在此时为0
	period float64
	plan   Plan

	curve atomic.Pointer[Curve]
}

// New 创建车辆
// 参数：id-标识，spawn-出生时刻（任意实数，内部取模），period-周期，plan-轨迹方案
func New(id ID, spawn, period float64, plan Plan) *Vehicle {
	return &Vehicle{
		id:     id,
		spawn:  mathutil.FloorMod(spawn, period),
		period: period,
		plan:   plan,
	}
}

// NewFragment 以预先给定的原始路点创建车辆（拆分片段）
func NewFragment(id ID, spawn, period float64, kind string, raw []RawWaypoint) *Vehicle {
	return New(id, spawn, period, fragment{kind: kind, raw: raw})
}

func (v *Vehicle) String() string {
	return v.id.String()
}

// ID 车辆标识
func (v *Vehicle) ID() ID {
	return v.id
}

// Kind 车辆类型
func (v *Vehicle) Kind() string {
	return v.plan.Kind()
}

// SpawnTime 出生时刻（相对分钟）
func (v *Vehicle) SpawnTime() float64 {
	return v.spawn
}

// Period 周期
func (v *Vehicle) Period() float64 {
	return v.period
}

// RawWaypoints 原始路点
func (v *Vehicle) RawWaypoints() ([]RawWaypoint, error) {
	return v.plan.RawWaypoints()
}

// Curve 获取状态曲线（相对分钟），首次调用时构建并缓存
func (v *Vehicle) Curve() (*Curve, error) {
	if c := v.curve.Load(); c != nil {
		return c, nil
	}
	return v.rebuild()
}

// Invalidate 丢弃缓存的曲线，下一次查询时整体重建
func (v *Vehicle) Invalidate() {
	v.curve.Store(nil)
}

// Rebuild 立即重建曲线并原子替换
func (v *Vehicle) Rebuild() error {
	_, err := v.rebuild()
	return err
}

func (v *Vehicle) rebuild() (*Curve, error) {
	raw, err := v.plan.RawWaypoints()
	if err != nil {
		return nil, err
	}
	shifted := make([]RawWaypoint, len(raw))
	for i, w := range raw {
		w.Time += v.spawn
		shifted[i] = w
	}
	c, err := Build(v.id, shifted, v.period)
	if err != nil {
		return nil, err
	}
	v.curve.Store(c)
	return c, nil
}

// At 查询相对分钟relative时的状态
// 说明：曲线必须能够构建（隧道在构造时已全部构建过一次），否则视为内部错误
func (v *Vehicle) At(relative float64) State {
	c, err := v.Curve()
	if err != nil {
		log.Panicf("vehicle %v: trajectory no longer builds: %v", v.id, err)
	}
	return c.At(relative)
}
