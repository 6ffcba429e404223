package tunnel

import (
	"fmt"

	"github.com/hudcostreets/ht-sub001/entity/lane"
	"github.com/hudcostreets/ht-sub001/entity/queue"
	"github.com/hudcostreets/ht-sub001/entity/vehicle"
	"github.com/hudcostreets/ht-sub001/utils/geometry"
)

const (
	KindBike  = "bike"
	KindCar   = "car"
	KindSweep = "sweep"
	KindPace  = "pace"
)

// journey 一次通行的轨迹计划，实现vehicle.Plan
// 功能：自行车、汽车、清道车、领航车共用同一条生命周期，差别只在速度、车道、是否排队与是否并道
// 说明：本地时间0为淡入起点，fade分钟后到达排队位置（或入口）
type journey struct {
	kind   string
	geo    *layout
	mph    float64
	laneY  float64
	record *queue.Record // 排队记录，nil表示直接进入
	merge  *lane.Merge   // 并道计划，nil表示不并道
}

func (j *journey) Kind() string {
	return j.kind
}

// fadeMins 淡入淡出用时，也是生成时刻与到达时刻之差
func (j *journey) fadeMins() float64 {
	return j.geo.fadeMins(j.mph)
}

// RawWaypoints 生成未归一化的路点
// 算法说明：
// 1. 0分：排队位置（或入口）后方fade_dist处，透明，origin
// 2. fade分：到达排队位置，不透明，queued；不排队则直接到入口开始transiting
// 3. 排队的车再过minsBeforeRelease开始dequeueing，再过minsToDrain到达入口
// 4. 并道的车在merge.End-merge.Start后到达目标车道，位置落在目标车道前后两车中间
// 5. 到达出口exiting，再过fade分钟到出口前方fade_dist处，透明，done
// 说明：时间可能超过一个周期，由CycleSplitter处理
func (j *journey) RawWaypoints() ([]vehicle.RawWaypoint, error) {
	fade := j.fadeMins()
	transit := j.geo.transitMins(j.mph)
	speed := j.geo.pxPerMin(j.mph)
	dist := j.geo.cfg.FadeDist

	entrance := j.geo.entranceOf(j.laneY)
	wait := entrance
	if j.record != nil {
		wait = entrance.Add(j.record.Offset)
	}
	raw := []vehicle.RawWaypoint{
		vehicle.At(0).Pos(j.geo.ahead(wait, -dist)).Op(0).In(vehicle.Origin),
	}
	t := fade
	if j.record != nil {
		raw = append(raw, vehicle.At(t).Pos(wait).Op(1).In(vehicle.Queued))
		t += j.record.MinsBeforeRelease
		raw = append(raw, vehicle.At(t).In(vehicle.Dequeueing))
		t += j.record.MinsToDrain
	}
	raw = append(raw, vehicle.At(t).Pos(entrance).Op(1).In(vehicle.Transiting))

	exitY, exitAt := j.laneY, t+transit
	if m := j.merge; m != nil {
		ahead := speed * (m.End - m.Anchor)
		mergeAt := t + (m.End - m.Start)
		exitY, exitAt = m.ToY, mergeAt+transit-(m.End-m.Anchor)
		if !(exitAt > mergeAt) {
			return nil, fmt.Errorf(
				"%w: merge into y=%v completes %.3f min after entry, beyond the tunnel exit",
				vehicle.ErrTrajectory, m.ToY, m.End-m.Start,
			)
		}
		raw = append(raw, vehicle.At(mergeAt).Pos(j.geo.ahead(geometry.Point{X: entrance.X, Y: m.ToY}, ahead)))
	}
	exit := j.geo.exitOf(exitY)
	raw = append(raw,
		vehicle.At(exitAt).Pos(exit).In(vehicle.Exiting),
		vehicle.At(exitAt+fade).Pos(j.geo.ahead(exit, dist)).Op(0).In(vehicle.Done),
	)
	return raw, nil
}
