package container

import "container/heap"

// item 优先队列中单个元素
type item[T any] struct {
	Value    T       // 元素的值
	Priority float64 // 优先级（越小越优先），事件扫描中即事件时刻
	seq      uint64  // 入队序号，优先级相同时先入先出
	index    int     // 堆中下标，由heap.Interface维护
}

// priorityQueue 实现heap.Interface的最小堆
type priorityQueue[T any] []*item[T]

func (pq priorityQueue[T]) Len() int { return len(pq) }

// Less 优先级小者优先，相同时按入队序号
func (pq priorityQueue[T]) Less(i, j int) bool {
	if pq[i].Priority != pq[j].Priority {
		return pq[i].Priority < pq[j].Priority
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue[T]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	it := x.(*item[T])
	it.index = len(*pq)
	*pq = append(*pq, it)
}

func (pq *priorityQueue[T]) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil // 避免内存泄漏
	it.index = -1
	*pq = old[0 : n-1]
	return it
}

// PriorityQueue 稳定优先队列
// 功能：按优先级升序弹出元素，优先级相同时保持入队顺序
// 说明：排队模型的离散事件扫描依赖这一稳定性（同一时刻到达的车辆按编号先后入队）
type PriorityQueue[T any] struct {
	queue priorityQueue[T]
	seq   uint64
}

// NewPriorityQueue 创建优先队列
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{queue: make(priorityQueue[T], 0)}
}

// Len 队列长度
func (q *PriorityQueue[T]) Len() int {
	return len(q.queue)
}

// First 查看优先级最小的元素（不移除）
func (q *PriorityQueue[T]) First() (value T, priority float64) {
	return q.queue[0].Value, q.queue[0].Priority
}

// Push 批量加入元素（不维护堆结构，加入完毕后需调用Heapify）
func (q *PriorityQueue[T]) Push(value T, priority float64) {
	q.queue = append(q.queue, &item[T]{Value: value, Priority: priority, seq: q.seq})
	q.seq++
}

// Heapify 重新构建堆
func (q *PriorityQueue[T]) Heapify() {
	heap.Init(&q.queue)
}

// HeapPush 加入元素并维护堆结构
func (q *PriorityQueue[T]) HeapPush(value T, priority float64) {
	heap.Push(&q.queue, &item[T]{Value: value, Priority: priority, seq: q.seq})
	q.seq++
}

// HeapPop 弹出优先级最小的元素
func (q *PriorityQueue[T]) HeapPop() (value T, priority float64) {
	it := heap.Pop(&q.queue).(*item[T])
	return it.Value, it.Priority
}
