package container_test

import (
	"testing"

	"github.com/hudcostreets/ht-sub001/utils/container"
	"github.com/stretchr/testify/assert"
)

func TestPriorityQueueStableOrder(t *testing.T) {
	q := container.NewPriorityQueue[string]()
	q.Push("c", 3)
	q.Push("a1", 1)
	q.Push("b", 2)
	q.Push("a2", 1)
	q.Heapify()
	q.HeapPush("a3", 1)
	q.HeapPush("z", 0)
	assert.Equal(t, 6, q.Len())

	v, p := q.First()
	assert.Equal(t, "z", v)
	assert.Equal(t, 0.0, p)

	var got []string
	for q.Len() > 0 {
		v, _ := q.HeapPop()
		got = append(got, v)
	}
	assert.Equal(t, []string{"z", "a1", "a2", "a3", "b", "c"}, got)
}
