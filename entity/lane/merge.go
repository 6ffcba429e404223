package lane

import (
	"math"

	"github.com/hudcostreets/ht-sub001/utils/mathutil"
)

// Merge 并道计划
type Merge struct {
	Start  float64 // 开始并道的相对分钟（进入隧道）
	End    float64 // 完成并道的相对分钟
	Anchor float64 // 目标车道前后两车进入时刻的中点
	FromY  float64 // 原车道中心线
	ToY    float64 // 目标车道中心线
}

// MergeInto 计算从入口处并入本车道的时间表
// 功能：一辆在start时刻从相邻车道进入隧道的车，经过mins分钟并入本车道，
// 落在本车道前后两车的正中间
// 参数：fromY-原车道中心线，start-进入隧道的相对分钟，mins-并道用时
// 返回：并道计划；ok为false表示本车道为空，无需居中
// 算法说明：
// 1. 取本车道在start前后最近的两辆车，其进入时刻的中点为Anchor
// 2. 并道完成时刻为Anchor+mins，此时该车与前后两车的纵向距离相等（同速行驶时，位置只取决于进入时刻）
// 3. 中点早于start时（两车道偏移不对称）从start起算，保证并道用时不少于mins
func (l *Lane) MergeInto(fromY, start, mins float64) (m Merge, ok bool) {
	prev, next, ok := l.Neighbors(start)
	if !ok {
		return Merge{}, false
	}
	anchor := mathutil.Lerp(prev, next, 0.5)
	end := math.Max(anchor, start) + mins
	log.Tracef("merge into %s at %.3f: neighbors %.3f/%.3f, done at %.3f", l.name, start, prev, next, end)
	return Merge{Start: start, End: end, Anchor: anchor, FromY: fromY, ToY: l.y}, true
}
