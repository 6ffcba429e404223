package tunnel

import (
	"fmt"

	"github.com/hudcostreets/ht-sub001/entity/vehicle"
	"github.com/hudcostreets/ht-sub001/utils"
	"github.com/hudcostreets/ht-sub001/utils/config"
	"github.com/samber/lo"
)

// Manager 隧道管理器
// 功能：管理两个方向的隧道，按名称查找，提供跨隧道的车辆列表、位置查询与整帧快照
type Manager struct {
	period  float64
	data    map[string]*Tunnel
	tunnels []*Tunnel
}

// NewManager 根据配置创建全部隧道
// 参数：cfg-完整配置（tunnels已加载）
// 返回：管理器；任一隧道构造失败即返回该错误
func NewManager(cfg config.Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{period: cfg.Period}
	for _, tc := range cfg.Tunnels {
		t, err := New(tc, cfg.Layout, cfg.Period)
		if err != nil {
			return nil, err
		}
		m.tunnels = append(m.tunnels, t)
	}
	m.data = lo.SliceToMap(m.tunnels, func(t *Tunnel) (string, *Tunnel) {
		return t.Name(), t
	})
	log.Infof("%d tunnels ready: %v", len(m.tunnels), lo.Map(m.tunnels, func(t *Tunnel, _ int) string { return t.Name() }))
	return m, nil
}

// Period 周期
func (m *Manager) Period() float64 {
	return m.period
}

// Tunnels 全部隧道（按配置顺序）
func (m *Manager) Tunnels() []*Tunnel {
	return m.tunnels
}

// Get 根据名称获取隧道，不存在则panic
func (m *Manager) Get(name string) *Tunnel {
	if t, ok := m.data[name]; !ok {
		log.Panicf("no tunnel %s", name)
		return nil
	} else {
		return t
	}
}

// GetOrError 根据名称获取隧道，不存在则返回ErrUnknownTunnel
func (m *Manager) GetOrError(name string) (*Tunnel, error) {
	if t, ok := m.data[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTunnel, name)
	} else {
		return t, nil
	}
}

// Select 按名称选择隧道
// 参数：names-隧道名，为空表示全部
// 返回：选中的隧道（按names顺序），不存在的名称以ErrUnknownTunnel报告
func (m *Manager) Select(names []string) ([]*Tunnel, error) {
	tunnels, failed := utils.Find(m.data, m.tunnels, names)
	if len(failed) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTunnel, failed)
	}
	return tunnels, nil
}

// AllVehicles 全部车辆标识（按隧道配置顺序拼接）
func (m *Manager) AllVehicles() []vehicle.ID {
	return lo.FlatMap(m.tunnels, func(t *Tunnel, _ int) []vehicle.ID {
		return t.Vehicles()
	})
}

// PositionOf 车辆在绝对分钟abs时的画面状态
func (m *Manager) PositionOf(id vehicle.ID, abs float64) (vehicle.State, error) {
	t, err := m.GetOrError(id.Tunnel)
	if err != nil {
		return vehicle.State{}, err
	}
	return t.PositionOf(id, abs)
}

// PhaseAt 隧道在绝对分钟abs时的相位
func (m *Manager) PhaseAt(name string, abs float64) (Phase, error) {
	t, err := m.GetOrError(name)
	if err != nil {
		return 0, err
	}
	return t.PhaseAt(t.RelativeMinute(abs)), nil
}

// Frame 全部车辆在绝对分钟abs时的画面状态
func (m *Manager) Frame(abs float64) []Position {
	return lo.FlatMap(m.tunnels, func(t *Tunnel, _ int) []Position {
		return t.Snapshot(abs)
	})
}

// Reconfigure 按新的画面几何重建全部隧道
// 说明：先为每个隧道构建新的车辆集合，全部成功后才依次生效，任一失败则全部保持原状
func (m *Manager) Reconfigure(l config.Layout) error {
	pops := make([]*population, len(m.tunnels))
	for i, t := range m.tunnels {
		pop, err := t.prepare(l)
		if err != nil {
			return err
		}
		pops[i] = pop
	}
	for i, t := range m.tunnels {
		t.commit(pops[i])
	}
	return nil
}
