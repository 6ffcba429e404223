// 排队模型：自行车等候区与R车道汽车放行窗口的离散事件扫描
package queue

import (
	"errors"
	"fmt"

	"github.com/hudcostreets/ht-sub001/utils/geometry"
	"github.com/hudcostreets/ht-sub001/utils/mathutil"
)

var (
	ErrQueueCapacity = errors.New("queue capacity")
)

// Record 排队记录
// 功能：描述一辆车在进入隧道前的等待方式，由轨迹规划消费
type Record struct {
	Index             int            // 队列中的位置（0离入口最近）
	Offset            geometry.Point // 相对入口的排队位置
	MinsBeforeRelease float64        // 到达后多久开始放行（出队）
	MinsToDrain       float64        // 开始放行后多久到达入口
}

func (r *Record) String() string {
	return fmt.Sprintf("Record{Index:%d, Offset:%v, Before:%.3f, Drain:%.3f}", r.Index, r.Offset, r.MinsBeforeRelease, r.MinsToDrain)
}

// CheckCapacity 放行能力校验
// 功能：窗口长度×放行速率必须能清空一个周期按到达速率产生的车辆
// 参数：name-用于错误信息的队列名，release-放行速率，window-放行窗口长度，arrival-到达速率，period-周期
// 返回：不满足时返回ErrQueueCapacity
func CheckCapacity(name string, release, window, arrival, period float64) error {
	if release*window < arrival*period {
		return fmt.Errorf(
			"%w: %s releases %v/min over %v min = %v, less than %v arrivals per period",
			ErrQueueCapacity, name, release, window, release*window, arrival*period,
		)
	}
	return nil
}

// arrivals 一个周期内按固定速率的到达时刻
// 说明：第i辆车在offset+i/rate到达，数量为round(period×rate)，时刻取模到[0, period)
func arrivals(n int, rate, offset, period float64) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = mathutil.FloorMod(offset+float64(i)/rate, period)
	}
	return res
}
