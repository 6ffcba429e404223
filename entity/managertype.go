package entity

import (
	"github.com/hudcostreets/ht-sub001/entity/tunnel"
	"github.com/hudcostreets/ht-sub001/entity/vehicle"
	"github.com/hudcostreets/ht-sub001/utils/config"
	"github.com/hudcostreets/ht-sub001/utils/sidecar"
)

// Manager依赖倒置

// entity/tunnel/manager.go的依赖倒置
type ITunnelManager interface {
	Register(sidecar *sidecar.Sidecar) // 注册到Sidecar

	// 输入隧道名，查找隧道，如果不存在则panic
	Get(name string) *tunnel.Tunnel
	// 输入隧道名，查找隧道，如果不存在则返回error
	GetOrError(name string) (*tunnel.Tunnel, error)
	// 按名称选择隧道，为空表示全部
	Select(names []string) ([]*tunnel.Tunnel, error)

	AllVehicles() []vehicle.ID
	PositionOf(id vehicle.ID, abs float64) (vehicle.State, error)
	PhaseAt(name string, abs float64) (tunnel.Phase, error)
	Frame(abs float64) []tunnel.Position

	Reconfigure(layout config.Layout) error // 画面几何变化时整体重建
}

var _ ITunnelManager = (*tunnel.Manager)(nil)
