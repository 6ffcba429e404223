package task

import (
	"sync/atomic"

	"github.com/hudcostreets/ht-sub001/clock"
	"github.com/hudcostreets/ht-sub001/entity"
	"github.com/hudcostreets/ht-sub001/entity/tunnel"
	"github.com/hudcostreets/ht-sub001/utils/config"
	"github.com/hudcostreets/ht-sub001/utils/sidecar"
)

// Context 运行任务上下文
// 功能：包含一次运行的全部组件与状态，替代全局变量
// 说明：管理时钟、隧道管理器、运行时配置、RPC挂载点与推流中心
type Context struct {
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// 辅助程序，挂载各模块的connect服务与推流处理器
	sidecar *sidecar.Sidecar
	// 帧推流中心
	hub *hub

	// 隧道管理器
	tunnelManager *tunnel.Manager

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建运行任务上下文
// 功能：构建全部隧道并把时钟、隧道服务与/stream推流挂到sidecar上
// 参数：
//   - rc: 运行时配置（tunnels已加载）
//   - s: RPC挂载点
//
// 返回：初始化完成的Context；任一隧道构造失败时返回错误
// 算法说明：
// 1. 根据配置创建隧道管理器，所有轨迹在此时构建完毕
// 2. 创建时钟，从绝对分钟0开始，按rc.Speed推进，显示周期与配置的period一致
// 3. 注册ClockService、TunnelService与/stream
func NewContext(rc *config.RuntimeConfig, s *sidecar.Sidecar) (*Context, error) {
	m, err := tunnel.NewManager(rc.All)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		clock:         clock.New(rc.Speed, 0, rc.All.Period),
		sidecar:       s,
		tunnelManager: m,
		runtimeConfig: rc,
	}
	ctx.hub = newHub(m)

	ctx.clock.Register(ctx.sidecar)
	ctx.tunnelManager.Register(ctx.sidecar)
	ctx.sidecar.Handle(StreamPath, ctx.hub)
	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) TunnelManager() entity.ITunnelManager {
	return ctx.tunnelManager
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Init 时钟回到起点
func (ctx *Context) Init() {
	ctx.clock.Init()
	log.Infof("Tunnel: %v", len(ctx.tunnelManager.Tunnels()))
	log.Infof("Vehicle: %v", len(ctx.tunnelManager.AllVehicles()))
}

// Close 关闭推流中心，可重复调用
func (ctx *Context) Close() {
	if ctx.closed.Swap(true) {
		return
	}
	ctx.hub.close()
}

var _ entity.ITaskContext = (*Context)(nil)
