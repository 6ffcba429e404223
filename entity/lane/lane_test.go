package lane_test

import (
	"testing"

	"github.com/hudcostreets/ht-sub001/entity/lane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func every(offset float64, n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = offset + float64(i)
	}
	return res
}

func TestLaneOrder(t *testing.T) {
	l := lane.New("L", 15, 60, []float64{30, 5, 65, 5})
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, []float64{5, 5, 5, 30}, l.Arrivals())
	assert.Equal(t, []int{1, 2, 3, 0}, l.Order())
	assert.Equal(t, "L", l.Name())
	assert.Equal(t, 15.0, l.Y())
}

func TestNeighborsWrap(t *testing.T) {
	l := lane.New("L", 0, 60, []float64{5, 55})

	prev, next, ok := l.Neighbors(30)
	require.True(t, ok)
	assert.Equal(t, 5.0, prev)
	assert.Equal(t, 55.0, next)

	prev, next, _ = l.Neighbors(58)
	assert.Equal(t, 55.0, prev)
	assert.Equal(t, 65.0, next)

	prev, next, _ = l.Neighbors(2)
	assert.Equal(t, -5.0, prev)
	assert.Equal(t, 5.0, next)

	// 严格前后：恰好在某次到达时刻查询会跳过它
	prev, next, _ = l.Neighbors(5)
	assert.Equal(t, -5.0, prev)
	assert.Equal(t, 55.0, next)

	// 超出周期的时刻按所在周期展开
	prev, next, _ = l.Neighbors(62)
	assert.Equal(t, 55.0, prev)
	assert.Equal(t, 65.0, next)

	_, _, ok = lane.New("empty", 0, 60, nil).Neighbors(1)
	assert.False(t, ok)
}

func TestMergeCentered(t *testing.T) {
	l := lane.New("L", 15, 60, every(0, 60))
	m, ok := l.MergeInto(45, 10.5, 0.5)
	require.True(t, ok)
	assert.Equal(t, 10.5, m.Start)
	assert.Equal(t, 10.5, m.Anchor)
	assert.Equal(t, 11.0, m.End)
	assert.Equal(t, 45.0, m.FromY)
	assert.Equal(t, 15.0, m.ToY)

	// 跨周期：59.5进入，后一辆是下一周期的0分
	m, _ = l.MergeInto(45, 59.5, 0.5)
	assert.Equal(t, 59.5, m.Anchor)
	assert.Equal(t, 60.0, m.End)
}

func TestMergeAsymmetricOffsets(t *testing.T) {
	// 车道偏移不是半个间隔时，并道完成时刻随中点移动，而不是固定常数
	l := lane.New("L", 15, 60, every(0.2, 60))
	m, ok := l.MergeInto(45, 10.5, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 10.7, m.Anchor, 1e-9)
	assert.InDelta(t, 11.2, m.End, 1e-9)

	// 中点早于进入时刻：从进入时刻起算
	l = lane.New("L", 15, 60, every(0, 60))
	m, _ = l.MergeInto(45, 10.9, 0.5)
	assert.InDelta(t, 10.5, m.Anchor, 1e-9)
	assert.InDelta(t, 11.4, m.End, 1e-9)
}
