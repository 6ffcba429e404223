package container

import (
	"fmt"
	"log"
)

// ListNode 有序链表节点
// 功能：表示按键S升序排列的双向链表中的一个节点
// 说明：S通常是到达时刻（分钟），Value为元素本身，Extra存放附加信息
type ListNode[T any, E any] struct {
	parent     *List[T, E]     // 所属链表
	prev, next *ListNode[T, E] // 前驱和后继节点
	S          float64         // 键
	Value      T               // 值
	Extra      E               // 附加信息
}

func (n *ListNode[T, E]) String() string {
	return fmt.Sprintf("Node{S:%v, Value:%+v}", n.S, n.Value)
}

// Prev 前驱节点，首节点返回nil
func (n *ListNode[T, E]) Prev() *ListNode[T, E] {
	return n.prev
}

// Next 后继节点，尾节点返回nil
func (n *ListNode[T, E]) Next() *ListNode[T, E] {
	return n.next
}

// Parent 所属链表
func (n *ListNode[T, E]) Parent() *List[T, E] {
	return n.parent
}

// List 按S升序的双向链表
// 功能：维护元素的时间先后顺序，支持按键查找前后相邻元素
// 说明：键相同的元素按插入顺序排列（后插入的在后）
type List[T any, E any] struct {
	ID         string          // 链表标识符
	head, tail *ListNode[T, E] // 头尾节点
	length     int             // 长度
}

func (l *List[T, E]) String() string {
	return fmt.Sprintf("List{ID:%v, Len:%v}", l.ID, l.length)
}

// Len 链表长度
func (l *List[T, E]) Len() int {
	return l.length
}

// First 头节点，空链表返回nil
func (l *List[T, E]) First() *ListNode[T, E] {
	return l.head
}

// Last 尾节点，空链表返回nil
func (l *List[T, E]) Last() *ListNode[T, E] {
	return l.tail
}

// Keys 按顺序返回所有键
func (l *List[T, E]) Keys() []float64 {
	keys := make([]float64, 0, l.length)
	for node := l.head; node != nil; node = node.next {
		keys = append(keys, node.S)
	}
	return keys
}

// Values 按顺序返回所有值
func (l *List[T, E]) Values() []T {
	values := make([]T, 0, l.length)
	for node := l.head; node != nil; node = node.next {
		values = append(values, node.Value)
	}
	return values
}

// Insert 按键插入节点
// 功能：从尾部向前寻找插入位置，保持升序
// 参数：add-待插入节点（不能已在某个链表中）
// 说明：元素大多按时间顺序到达，从尾部扫描通常O(1)
func (l *List[T, E]) Insert(add *ListNode[T, E]) {
	if add.parent != nil {
		log.Panic("insert node who already in list")
	}
	add.parent = l
	l.length++
	node := l.tail
	for node != nil && node.S > add.S {
		node = node.prev
	}
	if node == nil {
		// 插到头部
		add.prev = nil
		add.next = l.head
		if l.head != nil {
			l.head.prev = add
		} else {
			l.tail = add
		}
		l.head = add
		return
	}
	add.prev = node
	add.next = node.next
	if node.next != nil {
		node.next.prev = add
	} else {
		l.tail = add
	}
	node.next = add
}

// Remove 移除节点
func (l *List[T, E]) Remove(node *ListNode[T, E]) {
	if node.parent != l {
		log.Panic("remove node from wrong list")
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	node.parent = nil
	l.length--
}

// Before 最后一个键严格小于s的节点，不存在返回nil
func (l *List[T, E]) Before(s float64) *ListNode[T, E] {
	node := l.tail
	for node != nil && node.S >= s {
		node = node.prev
	}
	return node
}

// After 第一个键严格大于s的节点，不存在返回nil
func (l *List[T, E]) After(s float64) *ListNode[T, E] {
	node := l.head
	for node != nil && node.S <= s {
		node = node.next
	}
	return node
}
