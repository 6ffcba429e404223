package tunnel_test

import (
	"context"
	"math"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/hudcostreets/ht-sub001/entity/tunnel"
	"github.com/hudcostreets/ht-sub001/entity/vehicle"
	"github.com/hudcostreets/ht-sub001/utils/config"
	"github.com/hudcostreets/ht-sub001/utils/sidecar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultManager(t *testing.T) *tunnel.Manager {
	m, err := tunnel.NewManager(config.Default())
	require.NoError(t, err)
	return m
}

func TestManagerLookup(t *testing.T) {
	m := defaultManager(t)
	assert.Len(t, m.Tunnels(), 2)
	assert.Equal(t, "E", m.Get("E").Name())
	assert.Panics(t, func() { m.Get("N") })
	_, err := m.GetOrError("N")
	assert.ErrorIs(t, err, tunnel.ErrUnknownTunnel)

	all := m.AllVehicles()
	assert.Len(t, all, len(m.Get("E").Vehicles())+len(m.Get("W").Vehicles()))
	assert.Equal(t, "E", all[0].Tunnel)
	assert.Equal(t, "W", all[len(all)-1].Tunnel)

	// 东向在:45、西向在:15进入自行车相位
	p, err := m.PhaseAt("E", 46)
	require.NoError(t, err)
	assert.Equal(t, tunnel.BikesEnter, p)
	p, _ = m.PhaseAt("W", 46)
	assert.Equal(t, tunnel.Normal, p)
	p, _ = m.PhaseAt("W", 19)
	assert.Equal(t, tunnel.Clearing, p)
	_, err = m.PhaseAt("N", 0)
	assert.ErrorIs(t, err, tunnel.ErrUnknownTunnel)

	_, err = m.PositionOf(vehicle.ID{Tunnel: "N", Group: vehicle.GroupL}, 0)
	assert.ErrorIs(t, err, tunnel.ErrUnknownTunnel)
	s, err := m.PositionOf(vehicle.ID{Tunnel: "E", Group: vehicle.GroupL, Index: 10}, 55.01)
	require.NoError(t, err)
	assert.Equal(t, vehicle.Transiting, s.Lifecycle)

	assert.Len(t, m.Frame(0), len(all))
}

func TestManagerInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tunnels[1].Name = "E"
	_, err := tunnel.NewManager(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	cfg = config.Default()
	cfg.Tunnels[1].Phases.Normal = 61
	_, err = tunnel.NewManager(cfg)
	assert.ErrorIs(t, err, tunnel.ErrPhaseBoundary)
}

func TestManagerReconfigureAllOrNothing(t *testing.T) {
	m := defaultManager(t)
	east, west := m.Get("E").Epoch(), m.Get("W").Epoch()

	l := m.Get("E").Layout()
	l.FadeDist = -1
	assert.Error(t, m.Reconfigure(l))
	assert.Equal(t, east, m.Get("E").Epoch())
	assert.Equal(t, west, m.Get("W").Epoch())

	l.FadeDist = 50
	require.NoError(t, m.Reconfigure(l))
	assert.NotEqual(t, east, m.Get("E").Epoch())
	assert.NotEqual(t, west, m.Get("W").Epoch())
	assert.Equal(t, 50.0, m.Get("W").Layout().FadeDist)
}

func TestManagerRPC(t *testing.T) {
	m := defaultManager(t)
	s := sidecar.New()
	m.Register(s)
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	call := func(method string, req map[string]any) (map[string]any, error) {
		res, err := sidecar.Call(context.Background(), server.Client(), server.URL, tunnel.ServiceName, method, req)
		if err != nil {
			return nil, err
		}
		return res.AsMap(), nil
	}

	res, err := call("Position", map[string]any{"id": "E/R/0", "minute": 50})
	require.NoError(t, err)
	assert.Equal(t, "queued", res["state"])
	assert.Equal(t, "car", res["kind"])
	assert.InDelta(t, -25, res["x"], 1e-9)
	assert.Equal(t, m.Get("E").Epoch().String(), res["epoch"])

	res, err = call("Phase", map[string]any{"tunnel": "W", "minute": 25})
	require.NoError(t, err)
	assert.Equal(t, "pace-car", res["phase"])
	assert.InDelta(t, 10, res["relative"], 1e-9)

	res, err = call("Vehicles", map[string]any{"tunnel": "W"})
	require.NoError(t, err)
	assert.Len(t, res["ids"], len(m.Get("W").Vehicles()))
	res, err = call("Vehicles", nil)
	require.NoError(t, err)
	assert.Len(t, res["ids"], len(m.AllVehicles()))

	res, err = call("Frame", map[string]any{"minute": 45})
	require.NoError(t, err)
	assert.Len(t, res["vehicles"], len(m.AllVehicles()))

	res, err = call("QueueLength", map[string]any{"tunnel": "E", "minute": 47})
	require.NoError(t, err)
	assert.InDelta(t, 4, res["bikes"], 1e-9)

	_, err = call("Position", map[string]any{"id": "E/R/999", "minute": 0})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	_, err = call("Position", map[string]any{"id": "garbage", "minute": 0})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	_, err = call("Phase", map[string]any{"tunnel": "E"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	_, err = call("Phase", map[string]any{"tunnel": "E", "minute": "soon"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = call("Phase", map[string]any{"tunnel": "E", "minute": bad})
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "%v", bad)
		_, err = call("Position", map[string]any{"id": "E/R/0", "minute": bad})
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "%v", bad)
		_, err = call("Frame", map[string]any{"minute": bad})
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "%v", bad)
	}
	_, err = call("QueueLength", map[string]any{"tunnel": "N", "minute": 0})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestManagerSelect(t *testing.T) {
	m := defaultManager(t)
	all, err := m.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, m.Tunnels(), all)

	picked, err := m.Select([]string{"W"})
	require.NoError(t, err)
	require.Len(t, picked, 1)
	assert.Equal(t, "W", picked[0].Name())

	_, err = m.Select([]string{"W", "N"})
	assert.ErrorIs(t, err, tunnel.ErrUnknownTunnel)
}
