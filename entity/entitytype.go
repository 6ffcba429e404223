package entity

import (
	"github.com/google/uuid"
	"github.com/hudcostreets/ht-sub001/entity/tunnel"
	"github.com/hudcostreets/ht-sub001/entity/vehicle"
	"github.com/hudcostreets/ht-sub001/utils/config"
)

// entity/tunnel/tunnel.go的依赖倒置
type ITunnel interface {
	Name() string
	Period() float64
	Epoch() uuid.UUID // 当前配置版本
	Layout() config.Layout

	RelativeMinute(abs float64) float64 // 绝对分钟转换为相对分钟
	PhaseAt(rel float64) tunnel.Phase   // 相对分钟所处的相位
	BikeQueueLength(rel float64) float64

	Vehicles() []vehicle.ID                                       // 全部车辆标识（顺序稳定）
	PositionOf(id vehicle.ID, abs float64) (vehicle.State, error) // 车辆在绝对分钟时的状态
	Snapshot(abs float64) []tunnel.Position                       // 整帧快照

	// print

	String() string
}

var _ ITunnel = (*tunnel.Tunnel)(nil)
