package task

import (
	"encoding/json"
	"testing"

	"github.com/hudcostreets/ht-sub001/entity"
	"github.com/hudcostreets/ht-sub001/entity/tunnel"
	"github.com/hudcostreets/ht-sub001/entity/vehicle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedTunnel 只实现Snapshot的隧道，其余方法不会被推流调用
type fixedTunnel struct {
	entity.ITunnel
	positions []tunnel.Position
}

func (t fixedTunnel) Snapshot(float64) []tunnel.Position {
	return t.positions
}

func TestEncodeFrame(t *testing.T) {
	a := fixedTunnel{positions: []tunnel.Position{
		{ID: "E/L/0", Kind: "car", State: vehicle.State{X: 1, Y: 2, Opacity: 1, Lifecycle: vehicle.Transiting}},
	}}
	b := fixedTunnel{positions: []tunnel.Position{
		{ID: "W/sweep/0", Kind: "sweep", State: vehicle.State{Lifecycle: vehicle.Origin}},
	}}
	msg, err := encodeFrame(tick{abs: 61.5, display: "01:30"}, []entity.ITunnel{a, b})
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(msg, &frame))
	assert.Equal(t, 61.5, frame.Minute)
	assert.Equal(t, "01:30", frame.Clock)
	assert.Equal(t, append(a.positions, b.positions...), frame.Vehicles)
	assert.Contains(t, string(msg), `"state":"transiting"`)
}
