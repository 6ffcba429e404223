package task

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"time"
)

const (
	SelfName = "ht" // 本程序的服务名
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
	tickInterval      = flag.Duration("tick", 100*time.Millisecond, "时钟推进与推流的真实时间间隔")
)

// step 推进一步
// 功能：按真实时间dt推进时钟并把新时刻的整帧推给订阅者
// 算法说明：
// 1. 更新时钟：增加步数，绝对分钟增加dt×speed
// 2. 心跳日志：每heartbeat_interval步输出一次当前时刻与各隧道相位
// 3. 推流：把绝对分钟交给推流中心，由其按客户端的隧道过滤生成帧
func (ctx *Context) step(dt time.Duration) {
	abs := ctx.clock.Advance(dt)
	display := ctx.clock.String()

	if n := *heartBeatInterval; n > 0 && ctx.clock.Step()%int64(n) == 0 {
		phases := make([]any, 0, 2*len(ctx.tunnelManager.Tunnels()))
		for _, t := range ctx.tunnelManager.Tunnels() {
			phases = append(phases, t.Name(), t.PhaseAt(t.RelativeMinute(abs)))
		}
		log.Infof("STEP: %d(%s) %v", ctx.clock.Step(), display, phases)
	}

	ctx.hub.publish(abs, display)
}

// Run 运行
// 功能：监听listen地址并进入时钟循环，直到ctx被取消
func (ctx *Context) Run(c context.Context, listen string) error {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}
	return ctx.Serve(c, ln)
}

// Serve 在已有监听器上提供RPC与推流服务并推进时钟
// 算法说明：
// 1. 初始化时钟，启动http服务协程
// 2. 每个tick按真实流逝时间推进一步
// 3. ctx取消时优雅关闭http服务与推流中心；http服务意外退出时返回其错误
func (ctx *Context) Serve(c context.Context, ln net.Listener) error {
	ctx.Init()
	server := &http.Server{Handler: ctx.sidecar.Handler()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()
	log.Infof("serving %v and %s at %s", ctx.sidecar.Services(), StreamPath, ln.Addr())

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-c.Done():
			ctx.Close()
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdown); err != nil {
				log.Warnf("shutdown: %v", err)
			}
			log.Infof("engine complete at %s (step %d)", ctx.clock, ctx.clock.Step())
			return nil
		case err := <-errCh:
			ctx.Close()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case now := <-ticker.C:
			ctx.step(now.Sub(last))
			last = now
		}
	}
}
