package contractor

import (
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
)

// ContractionQueue. min heap of vertices keyed by priority, ties ordered by vertex id. a vertex whose neighbourhood
// changed is marked invalidated and recomputed when it reaches the top.
type ContractionQueue struct {
	pq          *da.MinHeap[da.Index]
	nodes       map[da.Index]*da.PriorityQueueNode[da.Index]
	invalidated map[da.Index]struct{}
}

func NewContractionQueue(capacity int) *ContractionQueue {
	pq := da.NewBinaryHeap[da.Index]()
	pq.Preallocate(capacity)
	return &ContractionQueue{
		pq:          pq,
		nodes:       make(map[da.Index]*da.PriorityQueueNode[da.Index], capacity),
		invalidated: make(map[da.Index]struct{}),
	}
}

// Push inserts v or overwrites its priority if already queued. also clears the invalidated flag.
func (q *ContractionQueue) Push(v da.Index, priority float64) {
	delete(q.invalidated, v)
	if node, ok := q.nodes[v]; ok {
		_ = q.pq.Update(node, priority)
		return
	}
	node := da.NewPriorityQueueNodeWithTieBreak(priority, uint32(v), v)
	q.nodes[v] = node
	q.pq.Insert(node)
}

// Update is Push for a vertex that must already be queued.
func (q *ContractionQueue) Update(v da.Index, priority float64) bool {
	if _, ok := q.nodes[v]; !ok {
		return false
	}
	q.Push(v, priority)
	return true
}

func (q *ContractionQueue) Peek() (da.Index, float64, bool) {
	node, err := q.pq.GetMin()
	if err != nil {
		return 0, 0, false
	}
	return node.GetItem(), node.GetRank(), true
}

// PeekAllMin. every queued vertex that shares the minimum priority, in no particular order.
func (q *ContractionQueue) PeekAllMin() []da.Index {
	nodes := q.pq.GetAllMin()
	res := make([]da.Index, len(nodes))
	for i, n := range nodes {
		res[i] = n.GetItem()
	}
	return res
}

func (q *ContractionQueue) Pop() (da.Index, float64, bool) {
	node, err := q.pq.ExtractMin()
	if err != nil {
		return 0, 0, false
	}
	v := node.GetItem()
	delete(q.nodes, v)
	delete(q.invalidated, v)
	return v, node.GetRank(), true
}

func (q *ContractionQueue) Remove(v da.Index) bool {
	node, ok := q.nodes[v]
	if !ok {
		return false
	}
	_ = q.pq.Remove(node)
	delete(q.nodes, v)
	delete(q.invalidated, v)
	return true
}

func (q *ContractionQueue) Invalidate(v da.Index) {
	if _, ok := q.nodes[v]; ok {
		q.invalidated[v] = struct{}{}
	}
}

func (q *ContractionQueue) IsInvalidated(v da.Index) bool {
	_, ok := q.invalidated[v]
	return ok
}

func (q *ContractionQueue) Contains(v da.Index) bool {
	_, ok := q.nodes[v]
	return ok
}

func (q *ContractionQueue) Priority(v da.Index) (float64, bool) {
	node, ok := q.nodes[v]
	if !ok {
		return 0, false
	}
	return node.GetRank(), true
}

func (q *ContractionQueue) Len() int {
	return q.pq.Size()
}

// less. ordering used by the heap, (priority, id).
func less(pa float64, a da.Index, pb float64, b da.Index) bool {
	if pa != pb {
		return pa < pb
	}
	return a < b
}
