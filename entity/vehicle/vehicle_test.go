package vehicle_test

import (
	"sync"
	"testing"

	"github.com/hudcostreets/ht-sub001/entity/vehicle"
	"github.com/hudcostreets/ht-sub001/utils/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingPlan 记录RawWaypoints被调用的次数，x可在测试中修改以模拟几何变化
type countingPlan struct {
	mu    sync.Mutex
	calls int
	x     float64
}

func (p *countingPlan) Kind() string { return "test" }

func (p *countingPlan) RawWaypoints() ([]vehicle.RawWaypoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return []vehicle.RawWaypoint{
		vehicle.At(0).Pos(geometry.Point{}).Op(0).In(vehicle.Origin),
		vehicle.At(10).Pos(geometry.Point{X: p.x}).Op(1).In(vehicle.Transiting),
	}, nil
}

func TestVehicleCurveMemoized(t *testing.T) {
	plan := &countingPlan{x: 100}
	v := vehicle.New(testID, 65, 60, plan)
	assert.Equal(t, 5.0, v.SpawnTime())
	assert.Equal(t, "test", v.Kind())

	c1, err := v.Curve()
	require.NoError(t, err)
	c2, err := v.Curve()
	require.NoError(t, err)
	assert.Same(t, c1, c2)
	assert.Equal(t, 1, plan.calls)

	// 相对分钟15 -> 本地时间10
	assert.Equal(t, 100.0, v.At(15).X)
	assert.Equal(t, v.At(15), v.At(15+60))
	assert.Equal(t, v.At(15), v.At(15))
}

func TestVehicleInvalidateRebuilds(t *testing.T) {
	plan := &countingPlan{x: 100}
	v := vehicle.New(testID, 0, 60, plan)
	old, err := v.Curve()
	require.NoError(t, err)

	plan.x = 200
	// 未失效前仍是旧曲线
	assert.Equal(t, 100.0, v.At(10).X)

	v.Invalidate()
	assert.Equal(t, 200.0, v.At(10).X)
	c, err := v.Curve()
	require.NoError(t, err)
	assert.NotSame(t, old, c)

	plan.x = 300
	require.NoError(t, v.Rebuild())
	assert.Equal(t, 300.0, v.At(10).X)
	assert.Equal(t, 3, plan.calls)
}

func TestVehicleConcurrentReadsDuringRebuild(t *testing.T) {
	plan := &countingPlan{x: 100}
	v := vehicle.New(testID, 0, 60, plan)
	require.NoError(t, v.Rebuild())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				x := v.At(10).X
				assert.Contains(t, []float64{100, 200}, x)
			}
		}()
	}
	plan.mu.Lock()
	plan.x = 200
	plan.mu.Unlock()
	require.NoError(t, v.Rebuild())
	wg.Wait()
	assert.Equal(t, 200.0, v.At(10).X)
}

func TestVehicleBrokenPlanPanics(t *testing.T) {
	v := vehicle.NewFragment(testID, 0, 60, "test", []vehicle.RawWaypoint{vehicle.At(0)})
	_, err := v.Curve()
	require.Error(t, err)
	assert.Panics(t, func() { v.At(0) })
}
