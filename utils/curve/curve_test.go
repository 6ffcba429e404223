package curve_test

import (
	"testing"

	"github.com/hudcostreets/ht-sub001/utils/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(kv ...float64) []curve.Waypoint[curve.Scalar] {
	res := make([]curve.Waypoint[curve.Scalar], 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		res = append(res, curve.Waypoint[curve.Scalar]{Time: kv[i], Value: curve.Scalar(kv[i+1])})
	}
	return res
}

func TestNewRejectsInvalid(t *testing.T) {
	_, err := curve.New[curve.Scalar](nil, 60)
	assert.ErrorIs(t, err, curve.ErrInvalidCurve)

	_, err = curve.New(points(0, 0, 10, 1, 10, 2), 60)
	assert.ErrorIs(t, err, curve.ErrInvalidCurve)

	_, err = curve.New(points(0, 0, 20, 1, 10, 2), 60)
	assert.ErrorIs(t, err, curve.ErrInvalidCurve)

	_, err = curve.New(points(0, 0, 60, 1), 60)
	assert.ErrorIs(t, err, curve.ErrInvalidCurve)

	_, err = curve.New(points(-1, 0, 30, 1), 60)
	assert.ErrorIs(t, err, curve.ErrInvalidCurve)

	_, err = curve.New(points(0, 0, 1, 1), -1)
	assert.ErrorIs(t, err, curve.ErrInvalidCurve)
}

func TestWrapAround(t *testing.T) {
	c, err := curve.New(points(0, 0, 50, 100), 60)
	require.NoError(t, err)

	assert.InDelta(t, 50, float64(c.At(55)), 1e-9)
	assert.InDelta(t, 50, float64(c.At(25)), 1e-9)
	assert.Equal(t, c.At(59), c.At(-1))
	assert.Equal(t, c.At(55), c.At(55+60))
	assert.Equal(t, c.At(55), c.At(55-120))
}

func TestBeforeFirstWaypointWraps(t *testing.T) {
	c, err := curve.New(points(10, 0, 40, 60), 60)
	require.NoError(t, err)

	// [40, 70] 从60线性降到0，t=5等价于t=65
	assert.InDelta(t, 10, float64(c.At(5)), 1e-9)
	assert.InDelta(t, 30, float64(c.At(55)), 1e-9)
}

func TestNonPeriodicClamps(t *testing.T) {
	c, err := curve.New(points(10, 1, 20, 3), 0)
	require.NoError(t, err)

	assert.Equal(t, curve.Scalar(1), c.At(-100))
	assert.Equal(t, curve.Scalar(1), c.At(5))
	assert.Equal(t, curve.Scalar(2), c.At(15))
	assert.Equal(t, curve.Scalar(3), c.At(25))
}

func TestExactHitReturnsVerbatim(t *testing.T) {
	v := curve.Scalar(0.1 + 0.2)
	c, err := curve.New(points(0, 0, 1.0/3, float64(v), 7, 9), 60)
	require.NoError(t, err)

	assert.Equal(t, v, c.At(1.0/3))
	assert.Equal(t, curve.Scalar(9), c.At(7))
	assert.Equal(t, curve.Scalar(9), c.At(67))
}

func TestNearHitSnaps(t *testing.T) {
	c, err := curve.New(points(0, 5, 1.8, 10, 30, 20), 60)
	require.NoError(t, err)

	// 换算得到的1.799999999999997仍命中1.8
	assert.Equal(t, curve.Scalar(10), c.At(1.799999999999997))
	assert.Equal(t, curve.Scalar(10), c.At(1.8000000000000003))
	// 周期末尾回绕命中首个路点
	assert.Equal(t, curve.Scalar(5), c.At(59.99999999999999))
	assert.Equal(t, curve.Scalar(5), c.At(-1e-12))
	// 超出容差仍然插值
	assert.InDelta(t, 10.0-5.0/1.8*1e-6, float64(c.At(1.8-1e-6)), 1e-9)

	tail, err := curve.New(points(10, 1, 60-1e-12, 7), 60)
	require.NoError(t, err)
	assert.Equal(t, curve.Scalar(7), tail.At(0))
}

func TestSinglePoint(t *testing.T) {
	c, err := curve.New(points(5, 42), 60)
	require.NoError(t, err)

	assert.Equal(t, curve.Scalar(42), c.At(0))
	assert.Equal(t, curve.Scalar(42), c.At(30))
}

func TestDecayRule(t *testing.T) {
	decay := curve.Decay(5, 0)
	c, err := curve.New([]curve.Waypoint[curve.Scalar]{
		{Time: 0, Value: 14, Interp: decay},
		{Time: 4, Value: 3, Interp: decay},
	}, 60)
	require.NoError(t, err)

	// 不向下一个样本混合，而是按速率从起点值衰减
	assert.InDelta(t, 9, float64(c.At(1)), 1e-9)
	assert.InDelta(t, 0, float64(c.At(3.5)), 1e-9)
	assert.InDelta(t, 3, float64(c.At(4)), 1e-9)
	assert.InDelta(t, 0, float64(c.At(30)), 1e-9)
}

func TestPointsIsCopy(t *testing.T) {
	c, err := curve.New(points(0, 1, 2, 3), 10)
	require.NoError(t, err)

	ps := c.Points()
	ps[0].Value = 100
	assert.Equal(t, curve.Scalar(1), c.At(0))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 10.0, c.Period())
}

func TestHoldRule(t *testing.T) {
	c, err := curve.New([]curve.Waypoint[curve.Scalar]{
		{Time: 10, Value: 1, Interp: curve.Hold[curve.Scalar]},
		{Time: 20, Value: 2, Interp: curve.Hold[curve.Scalar]},
	}, 60)
	require.NoError(t, err)

	assert.Equal(t, curve.Scalar(1), c.At(19.9))
	assert.Equal(t, curve.Scalar(2), c.At(20))
	assert.Equal(t, curve.Scalar(2), c.At(5))
}
