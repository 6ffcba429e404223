package queue

import (
	"fmt"
	"math"

	"github.com/hudcostreets/ht-sub001/utils/container"
	"github.com/hudcostreets/ht-sub001/utils/curve"
	"github.com/hudcostreets/ht-sub001/utils/mathutil"
)

// BikePen 自行车等候区
// 功能：描述自行车的到达、放行窗口与等候区网格
// 说明：自行车在[0, Close)内以Release速率放行；Close及之后到达的自行车排到下一周期
type BikePen struct {
	Period  float64 // 周期
	Count   int     // 每周期自行车数量
	Arrival float64 // 到达速率（辆/分钟）
	Release float64 // 放行速率（辆/分钟）
	Close   float64 // 放行窗口关闭时刻
	Grid    PenGrid // 等候区网格
}

// Step 排队扫描中的一次到达
type Step struct {
	Bike   int     // 自行车编号
	Time   float64 // 到达时刻
	Before float64 // 到达前的队列长度（已按放行速率扣减）
	After  float64 // 到达后的队列长度
	Joined bool    // 是否进入队列
}

// BikeScan 自行车排队扫描结果
type BikeScan struct {
	Arrivals []float64                  // 按编号的到达时刻
	Records  []*Record                  // 按编号的排队记录，nil表示直接进入隧道
	Steps    []Step                     // 放行窗口内按到达顺序的计数器轨迹，排空后停止记录
	Length   *curve.Curve[curve.Scalar] // 等候区队列长度随相对分钟的变化
}

// Queued 需要排队的自行车数量
func (s *BikeScan) Queued() int {
	n := 0
	for _, r := range s.Records {
		if r != nil {
			n++
		}
	}
	return n
}

// Scan 计算每辆自行车的排队记录
// 功能：离散事件扫描，用一个运行中的队列长度决定谁需要排队、排在哪里、等多久
// 返回：扫描结果；放行能力不足或等候区容纳不下一个周期的自行车时返回ErrQueueCapacity
// 算法说明：
// 1. 按到达时刻升序出队（同一时刻按编号），分为窗口内与下一周期两组
// 2. 下一周期组在窗口关闭后已经排队，位置即到达顺序j，等到下个周期0分放行，j+1个位置依次放行
// 3. 队列长度以下一周期组的数量为初值，窗口内的自行车按到达顺序依次：
// 先扣减自上一次到达（循环意义上，首辆的上一次到达是上一周期的最后一辆）以来放行的数量，
// 若已≤0说明队列排空，此车及之后到达的车都无需排队；否则加1，此车排在ceil(长度)-1的位置
func (p BikePen) Scan() (*BikeScan, error) {
	if err := CheckCapacity("bike pen", p.Release, p.Close, p.Arrival, p.Period); err != nil {
		return nil, err
	}
	if p.Count > p.Grid.Capacity() {
		return nil, fmt.Errorf("%w: bike pen %dx%d cannot hold %d bikes", ErrQueueCapacity, p.Grid.Rows, p.Grid.Cols, p.Count)
	}
	arr := arrivals(p.Count, p.Arrival, 0, p.Period)
	events := container.NewPriorityQueue[int]()
	for i, a := range arr {
		events.Push(i, a)
	}
	events.Heapify()
	var open, next []int
	for events.Len() > 0 {
		i, a := events.HeapPop()
		if a < p.Close {
			open = append(open, i)
		} else {
			next = append(next, i)
		}
	}

	scan := &BikeScan{Arrivals: arr, Records: make([]*Record, len(arr))}
	for j, i := range next {
		scan.Records[i] = &Record{
			Index:             j,
			Offset:            p.Grid.Slot(j),
			MinsBeforeRelease: p.Period - arr[i],
			MinsToDrain:       float64(j+1) / p.Release,
		}
	}

	length := float64(len(next))
	var last float64
	switch {
	case len(next) > 0:
		last = arr[next[len(next)-1]] - p.Period
	case len(open) > 0:
		last = arr[open[len(open)-1]] - p.Period
	}
	for _, i := range open {
		a := arr[i]
		before := length - (a-last)*p.Release
		if before < 0 || mathutil.AlmostEqual(before, 0) {
			scan.Steps = append(scan.Steps, Step{Bike: i, Time: a, Before: before, After: before})
			break
		}
		length = before + 1
		last = a
		index := max(int(math.Ceil(length))-1, 0)
		scan.Records[i] = &Record{
			Index:             index,
			Offset:            p.Grid.Slot(index),
			MinsBeforeRelease: 0,
			MinsToDrain:       length / p.Release,
		}
		scan.Steps = append(scan.Steps, Step{Bike: i, Time: a, Before: before, After: length, Joined: true})
	}

	var err error
	if scan.Length, err = p.lengthCurve(arr, next, scan.Steps); err != nil {
		return nil, err
	}
	log.Debugf("bike pen: %d of %d bikes queue, %d wait for the next window", scan.Queued(), len(arr), len(next))
	return scan, nil
}

// lengthCurve 等候区队列长度曲线
// 说明：窗口内按放行速率衰减（Decay规则），窗口关闭后保持不变，下一周期组每到达一辆加1
func (p BikePen) lengthCurve(arr []float64, next []int, steps []Step) (*curve.Curve[curve.Scalar], error) {
	decay := curve.Decay(p.Release, 0)
	hold := curve.Hold[curve.Scalar]
	var points []curve.Waypoint[curve.Scalar]
	add := func(t, v float64, rule curve.Rule[curve.Scalar]) {
		w := curve.Waypoint[curve.Scalar]{Time: t, Value: curve.Scalar(v), Interp: rule}
		if n := len(points); n > 0 && points[n-1].Time == t {
			points[n-1] = w
			return
		}
		points = append(points, w)
	}
	add(0, float64(len(next)), decay)
	for _, s := range steps {
		if s.Joined {
			add(s.Time, s.After, decay)
		}
	}
	tail := points[len(points)-1]
	add(p.Close, math.Max(float64(tail.Value)-p.Release*(p.Close-tail.Time), 0), hold)
	for j, i := range next {
		add(arr[i], float64(j+1), hold)
	}
	return curve.New(points, p.Period)
}
