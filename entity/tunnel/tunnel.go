// 单方向隧道：构建一个周期的全部车辆，提供相位划分与任意时刻的位置查询
package tunnel

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hudcostreets/ht-sub001/entity/lane"
	"github.com/hudcostreets/ht-sub001/entity/queue"
	"github.com/hudcostreets/ht-sub001/entity/vehicle"
	"github.com/hudcostreets/ht-sub001/utils/config"
	"github.com/hudcostreets/ht-sub001/utils/mathutil"
)

var (
	ErrUnknownVehicle = errors.New("unknown vehicle")
	ErrUnknownTunnel  = errors.New("unknown tunnel")
)

// Position 某一时刻一辆车的画面状态
type Position struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	vehicle.State
}

// population 一个配置版本下的全部车辆
// 说明：构建完成后只读，重新配置时整体替换
type population struct {
	epoch    uuid.UUID
	layout   config.Layout
	geo      *layout
	bikes    *queue.BikeScan
	cars     *queue.CarScan
	vehicles []*vehicle.Vehicle
	byID     map[vehicle.ID]*vehicle.Vehicle
}

// add 加入一辆车，生命周期跨越周期边界时以stub+continuation代替
func (p *population) add(id vehicle.ID, spawn, period float64, plan vehicle.Plan) error {
	v := vehicle.New(id, spawn, period, plan)
	stub, cont, err := vehicle.Split(v)
	if err != nil {
		return err
	}
	if stub == nil {
		p.vehicles = append(p.vehicles, v)
		p.byID[v.ID()] = v
		return nil
	}
	p.vehicles = append(p.vehicles, stub, cont)
	p.byID[stub.ID()] = stub
	p.byID[cont.ID()] = cont
	return nil
}

// Tunnel 单方向隧道
// 功能：持有一个方向的配置、相位划分与车辆集合
// 说明：车辆集合通过原子指针整体替换，查询与重新配置可以并发进行，查询不会看到构建到一半的状态
type Tunnel struct {
	cfg    config.Tunnel
	period float64
	phases *Phases
	pop    atomic.Pointer[population]
}

// New 创建隧道
// 功能：校验配置、划分相位并立即构建全部车辆的轨迹
// 参数：cfg-隧道配置，l-画面几何，period-周期
// 返回：隧道；配置非法（ErrInvalidConfig）、相位边界非法（ErrPhaseBoundary）、
// 放行能力不足（queue.ErrQueueCapacity）或轨迹无法构建（vehicle.ErrTrajectory）时返回错误
func New(cfg config.Tunnel, l config.Layout, period float64) (*Tunnel, error) {
	if err := cfg.Validate(period); err != nil {
		return nil, err
	}
	phases, err := NewPhases(cfg.Phases, period)
	if err != nil {
		return nil, fmt.Errorf("tunnel %s: %w", cfg.Name, err)
	}
	t := &Tunnel{cfg: cfg, period: period, phases: phases}
	if err := t.Reconfigure(l); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tunnel) String() string {
	return fmt.Sprintf("Tunnel{%s, %s, offset:%v}", t.cfg.Name, t.cfg.Direction, t.cfg.Offset)
}

// Name 隧道名
func (t *Tunnel) Name() string {
	return t.cfg.Name
}

// Config 隧道配置
func (t *Tunnel) Config() config.Tunnel {
	return t.cfg
}

// Period 周期
func (t *Tunnel) Period() float64 {
	return t.period
}

// Phases 相位划分
func (t *Tunnel) Phases() *Phases {
	return t.phases
}

// Epoch 当前配置版本，每次重新配置都会变化
func (t *Tunnel) Epoch() uuid.UUID {
	return t.pop.Load().epoch
}

// Layout 当前画面几何
func (t *Tunnel) Layout() config.Layout {
	return t.pop.Load().layout
}

// RelativeMinute 绝对分钟转换为本隧道的相对分钟
func (t *Tunnel) RelativeMinute(abs float64) float64 {
	return mathutil.FloorMod(abs-t.cfg.Offset, t.period)
}

// PhaseAt 相对分钟所处的相位
func (t *Tunnel) PhaseAt(rel float64) Phase {
	return t.phases.At(rel)
}

// Vehicles 全部车辆标识
// 说明：顺序固定为自行车、L车道、R车道、清道车、领航车，组内按编号，被拆分的车辆依次为stub、continuation
func (t *Tunnel) Vehicles() []vehicle.ID {
	pop := t.pop.Load()
	ids := make([]vehicle.ID, len(pop.vehicles))
	for i, v := range pop.vehicles {
		ids[i] = v.ID()
	}
	return ids
}

// Vehicle 按标识查找车辆
func (t *Tunnel) Vehicle(id vehicle.ID) (*vehicle.Vehicle, error) {
	if v, ok := t.pop.Load().byID[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVehicle, id)
}

// PositionOf 车辆在绝对分钟abs时的画面状态
// 算法说明：绝对分钟 -> 相对分钟 -> 车辆本地时间 -> 曲线插值
func (t *Tunnel) PositionOf(id vehicle.ID, abs float64) (vehicle.State, error) {
	v, err := t.Vehicle(id)
	if err != nil {
		return vehicle.State{}, err
	}
	return v.At(t.RelativeMinute(abs)), nil
}

// Snapshot 全部车辆在绝对分钟abs时的画面状态（顺序同Vehicles）
func (t *Tunnel) Snapshot(abs float64) []Position {
	pop := t.pop.Load()
	rel := t.RelativeMinute(abs)
	res := make([]Position, len(pop.vehicles))
	for i, v := range pop.vehicles {
		res[i] = Position{ID: v.ID().String(), Kind: v.Kind(), State: v.At(rel)}
	}
	return res
}

// BikeQueueLength 相对分钟rel时等候区中的自行车数量
func (t *Tunnel) BikeQueueLength(rel float64) float64 {
	return float64(t.pop.Load().bikes.Length.At(rel))
}

// QueuedCars R车道封闭窗口内排队的汽车数量
func (t *Tunnel) QueuedCars() int {
	return t.pop.Load().cars.Queued
}

// Reconfigure 按新的画面几何重建全部车辆
// 功能：从头构建新的车辆集合后原子替换，失败时保留原有集合
func (t *Tunnel) Reconfigure(l config.Layout) error {
	pop, err := t.prepare(l)
	if err != nil {
		return err
	}
	t.commit(pop)
	return nil
}

// prepare 构建新的车辆集合（不生效）
func (t *Tunnel) prepare(l config.Layout) (*population, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	pop, err := t.build(l)
	if err != nil {
		return nil, fmt.Errorf("tunnel %s: %w", t.cfg.Name, err)
	}
	return pop, nil
}

// commit 使车辆集合生效
func (t *Tunnel) commit(pop *population) {
	if old := t.pop.Swap(pop); old != nil {
		log.Infof("tunnel %s reconfigured: epoch %s -> %s", t.cfg.Name, old.epoch, pop.epoch)
	}
}

// build 构建一个周期的全部车辆
// 算法说明：
// 1. 自行车：等候区排队扫描决定每辆车的排队记录，沿R车道通行
// 2. L车道汽车：不排队
// 3. R车道汽车：封闭窗口内到达的排队；窗口结束后、排队车辆放行完毕前到达的车并入L车道
// 4. 清道车、领航车：各一辆，在相位开始时从R车道入口进入
// 5. 跨越周期边界的车辆拆分为stub+continuation，最后逐辆构建曲线，使错误在构造时暴露
func (t *Tunnel) build(l config.Layout) (*population, error) {
	cfg, period := t.cfg, t.period
	geo := newLayout(l, cfg)
	pop := &population{
		epoch:  uuid.New(),
		layout: l,
		geo:    geo,
		byID:   make(map[vehicle.ID]*vehicle.Vehicle),
	}

	pen := queue.BikePen{
		Period:  period,
		Count:   cfg.BikesPerPeriod(period),
		Arrival: cfg.Bikes.PerMin,
		Release: cfg.Bikes.ReleasedPerMin,
		Close:   cfg.Bikes.PenClose,
		Grid:    geo.penGrid(cfg.Bikes),
	}
	bikes, err := pen.Scan()
	if err != nil {
		return nil, err
	}
	pop.bikes = bikes
	for i, a := range bikes.Arrivals {
		j := &journey{kind: KindBike, geo: geo, mph: cfg.Bikes.Mph, laneY: geo.ry, record: bikes.Records[i]}
		id := vehicle.ID{Tunnel: cfg.Name, Group: vehicle.GroupBikes, Index: i}
		if err := pop.add(id, a-j.fadeMins(), period, j); err != nil {
			return nil, err
		}
	}

	n := cfg.CarsPerPeriod(period)
	lArrivals := make([]float64, n)
	for i := range lArrivals {
		lArrivals[i] = mathutil.FloorMod(cfg.Cars.LOffset+float64(i)/cfg.Cars.PerMin, period)
	}
	lLane := lane.New(vehicle.GroupL, geo.ly, period, lArrivals)
	for _, i := range lLane.Order() {
		j := &journey{kind: KindCar, geo: geo, mph: cfg.Cars.Mph, laneY: geo.ly}
		id := vehicle.ID{Tunnel: cfg.Name, Group: vehicle.GroupL, Index: i}
		if err := pop.add(id, lArrivals[i]-j.fadeMins(), period, j); err != nil {
			return nil, err
		}
	}

	window := queue.CarWindow{
		Period:  period,
		Count:   n,
		Arrival: cfg.Cars.PerMin,
		Offset:  cfg.Cars.ROffset,
		Release: cfg.Cars.ReleasedPerMin,
		Close:   t.phases.Start(PaceCar),
		Gap:     l.CarGap,
		Dir:     geo.dir,
	}
	cars, err := window.Scan()
	if err != nil {
		return nil, err
	}
	pop.cars = cars
	merged := 0
	for i, a := range cars.Arrivals {
		j := &journey{kind: KindCar, geo: geo, mph: cfg.Cars.Mph, laneY: geo.ry, record: cars.Records[i]}
		if j.record == nil && a >= window.Close && a < cars.DrainEnd {
			if m, ok := lLane.MergeInto(geo.ry, a, cfg.Cars.MergeMins); ok {
				j.merge = &m
				merged++
			}
		}
		id := vehicle.ID{Tunnel: cfg.Name, Group: vehicle.GroupR, Index: i}
		if err := pop.add(id, a-j.fadeMins(), period, j); err != nil {
			return nil, err
		}
	}

	for _, escort := range []struct {
		group string
		kind  string
		mph   float64
		phase Phase
	}{
		{vehicle.GroupSweep, KindSweep, cfg.Sweep.Mph, Sweep},
		{vehicle.GroupPace, KindPace, cfg.Pace.Mph, PaceCar},
	} {
		j := &journey{kind: escort.kind, geo: geo, mph: escort.mph, laneY: geo.ry}
		id := vehicle.ID{Tunnel: cfg.Name, Group: escort.group}
		if err := pop.add(id, t.phases.Start(escort.phase)-j.fadeMins(), period, j); err != nil {
			return nil, err
		}
	}

	for _, v := range pop.vehicles {
		if err := v.Rebuild(); err != nil {
			return nil, err
		}
	}
	log.Infof(
		"tunnel %s: %d vehicles (%d of %d bikes queued, %d cars queued, %d merging)",
		cfg.Name, len(pop.vehicles), bikes.Queued(), len(bikes.Arrivals), cars.Queued, merged,
	)
	return pop, nil
}
