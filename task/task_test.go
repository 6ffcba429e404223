package task_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hudcostreets/ht-sub001/clock"
	"github.com/hudcostreets/ht-sub001/entity/tunnel"
	"github.com/hudcostreets/ht-sub001/task"
	"github.com/hudcostreets/ht-sub001/utils/config"
	"github.com/hudcostreets/ht-sub001/utils/sidecar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T) (*task.Context, *sidecar.Sidecar) {
	s := sidecar.New()
	ctx, err := task.NewContext(config.NewRuntimeConfig(config.Default(), 60), s)
	require.NoError(t, err)
	return ctx, s
}

// serve 在随机端口上启动服务，返回地址与停止函数
func serve(t *testing.T, ctx *task.Context) (string, func()) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	c, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ctx.Serve(c, ln)
	}()
	return ln.Addr().String(), func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("serve did not stop")
		}
	}
}

func TestNewContext(t *testing.T) {
	ctx, s := newContext(t)
	defer ctx.Close()
	assert.Equal(t, []string{clock.ServiceName, tunnel.ServiceName}, s.Services())
	assert.Equal(t, 60.0, ctx.Clock().Speed())
	assert.Equal(t, 60.0, ctx.Clock().Period())
	assert.Equal(t, 60.0, ctx.RuntimeConfig().All.Period)
	e, err := ctx.TunnelManager().GetOrError("E")
	require.NoError(t, err)
	assert.Equal(t, 45.0, e.Config().Offset)

	// 重复关闭
	ctx.Close()
	ctx.Close()
}

func TestNewContextInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Tunnels[0].Bikes.ReleasedPerMin = 0.01
	_, err := task.NewContext(config.NewRuntimeConfig(cfg, 1), sidecar.New())
	assert.Error(t, err)
}

func TestServeStream(t *testing.T) {
	ctx, _ := newContext(t)
	addr, stop := serve(t, ctx)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+task.StreamPath+"?tunnel=W", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame task.Frame
	require.NoError(t, json.Unmarshal(msg, &frame))
	assert.Len(t, frame.Vehicles, len(ctx.TunnelManager().Get("W").Vehicles()))
	for _, p := range frame.Vehicles {
		assert.True(t, strings.HasPrefix(p.ID, "W/"), p.ID)
	}
	assert.Regexp(t, `^\d\d:\d\d$`, frame.Clock)
	assert.Greater(t, frame.Minute, 0.0)

	// RPC与推流共用同一端口
	res, err := sidecar.Call(context.Background(), http.DefaultClient, "http://"+addr, clock.ServiceName, "Now", nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.AsMap()["minute"], frame.Minute)

	stop()
	// 停止后推流连接被关闭
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func TestServeStreamAllTunnels(t *testing.T) {
	ctx, _ := newContext(t)
	addr, stop := serve(t, ctx)
	defer stop()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+task.StreamPath, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame task.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Len(t, frame.Vehicles, len(ctx.TunnelManager().AllVehicles()))
}

func TestServeStreamUnknownTunnel(t *testing.T) {
	ctx, _ := newContext(t)
	addr, stop := serve(t, ctx)
	defer stop()

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+task.StreamPath+"?tunnel=N", nil)
	assert.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
