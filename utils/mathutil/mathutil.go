// 数值工具：周期时间运算所需的取模、插值与比较
package mathutil

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Eps 浮点比较容差（分钟）
const Eps = 1e-9

// FloorMod 向下取整取模
// 功能：将x映射到[0, m)，负数同样按周期回绕
// 参数：x-任意实数，m-模（必须为正）
// 返回：x mod m，位于[0, m)
// 说明：math.Mod对负数返回负值，这里统一修正为非负；
// 对于极小的负数，x+m可能因舍入恰好等于m，此时返回0以保持区间半开
func FloorMod[T constraints.Float](x, m T) T {
	r := T(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	if r >= m {
		r = 0
	}
	return r
}

// Lerp 线性插值
func Lerp[T constraints.Float](a, b, ratio T) T {
	return a + (b-a)*ratio
}

// Clamp 将x限制在[lo, hi]
func Clamp[T constraints.Ordered](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// AlmostEqual 判断两个浮点数是否在Eps范围内相等
func AlmostEqual[T constraints.Float](a, b T) bool {
	return math.Abs(float64(a-b)) <= Eps
}
