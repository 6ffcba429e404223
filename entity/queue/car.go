package queue

import (
	"math"

	"github.com/hudcostreets/ht-sub001/utils/container"
	"github.com/hudcostreets/ht-sub001/utils/geometry"
)

// CarWindow R车道的封闭窗口
// 功能：R车道在[0, Close)内让给自行车，期间到达的汽车在入口前排队，Close后以Release速率放行
type CarWindow struct {
	Period  float64 // 周期
	Count   int     // 每周期汽车数量
	Arrival float64 // 到达速率（辆/分钟）
	Offset  float64 // 首辆车的到达分钟
	Release float64 // 放行速率（辆/分钟）
	Close   float64 // 领航车出发时刻，即车道重新开放的时刻
	Gap     float64 // 排队车辆间距（像素）
	Dir     float64 // 行驶方向，+1或-1
}

// CarScan 汽车排队扫描结果
type CarScan struct {
	Arrivals []float64 // 按编号的到达时刻
	Records  []*Record // 按编号的排队记录，nil表示不排队
	Queued   int       // 排队车辆数
	DrainEnd float64   // 队列全部放行完毕的相对分钟
}

// Scan 计算R车道每辆汽车的排队记录
// 功能：封闭窗口内到达的第k辆车（按到达顺序）排在入口后(k+1)个车距处，
// 在Close时开始放行（minsBeforeRelease = Close - 到达时刻，不小于0），第k辆放行用时(k+1)/Release
// 返回：扫描结果；开放时段的放行能力不足以清空一个周期的到达量时返回ErrQueueCapacity
func (w CarWindow) Scan() (*CarScan, error) {
	if err := CheckCapacity("R lane", w.Release, w.Period-w.Close, w.Arrival, w.Period); err != nil {
		return nil, err
	}
	arr := arrivals(w.Count, w.Arrival, w.Offset, w.Period)
	events := container.NewPriorityQueue[int]()
	for i, a := range arr {
		events.Push(i, a)
	}
	events.Heapify()

	scan := &CarScan{Arrivals: arr, Records: make([]*Record, len(arr)), DrainEnd: w.Close}
	for events.Len() > 0 {
		i, a := events.HeapPop()
		if a >= w.Close {
			break
		}
		k := scan.Queued
		scan.Records[i] = &Record{
			Index:             k,
			Offset:            geometry.Point{X: -w.Dir * float64(k+1) * w.Gap},
			MinsBeforeRelease: math.Max(w.Close-a, 0),
			MinsToDrain:       float64(k+1) / w.Release,
		}
		scan.Queued++
	}
	scan.DrainEnd = w.Close + float64(scan.Queued)/w.Release
	log.Debugf("R lane: %d of %d cars queue, drained by %.3f", scan.Queued, len(arr), scan.DrainEnd)
	return scan, nil
}
