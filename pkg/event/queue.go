package event

import (
	"container/heap"

	"github.com/jihwankim/dscale-sim/pkg/jiffy"
)

// Queue is a time-ordered priority queue of events, keyed on
// (DeliverAt, ID). ID breaks ties between events scheduled for the same
// jiffy, so that two runs seeded and driven identically pop events in
// exactly the same order.
//
// Cancellation is lazy: Cancel marks an id as tombstoned instead of
// searching the heap for it. A tombstoned event is dropped silently the
// next time Pop would have returned it. This keeps Cancel cheap and avoids
// re-establishing the heap invariant on every cancellation.
type Queue struct {
	heap       eventHeap
	tombstones map[ID]struct{}
	nextID     ID
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	q := &Queue{tombstones: make(map[ID]struct{})}
	heap.Init(&q.heap)
	return q
}

// NextID returns a fresh, never-before-used event ID.
func (q *Queue) NextID() ID {
	id := q.nextID
	q.nextID++
	return id
}

// Push adds ev to the queue.
func (q *Queue) Push(ev Event) {
	heap.Push(&q.heap, ev)
}

// Cancel marks id so that it will be discarded rather than delivered,
// whether or not it is still in the queue. Cancelling an id that was
// already delivered or never scheduled is a harmless no-op.
func (q *Queue) Cancel(id ID) {
	if id >= q.nextID {
		// Not yet issued by NextID; a tombstone here would drop the future
		// event that is later assigned this id.
		return
	}
	q.tombstones[id] = struct{}{}
}

// Pop removes and returns the earliest non-cancelled event in the queue.
// The second return value is false if the queue has no deliverable events
// left.
func (q *Queue) Pop() (Event, bool) {
	for q.heap.Len() > 0 {
		ev := heap.Pop(&q.heap).(Event)
		if _, tombstoned := q.tombstones[ev.ID]; tombstoned {
			delete(q.tombstones, ev.ID)
			continue
		}
		return ev, true
	}
	return Event{}, false
}

// PeekDeliverAt returns the delivery jiffy of the earliest non-cancelled
// event without removing it, and reports whether one exists. Used by the
// scheduler to decide whether the next event falls within budget before
// committing to pop it.
func (q *Queue) PeekDeliverAt() (jiffy.Jiffy, bool) {
	for q.heap.Len() > 0 {
		ev := q.heap[0]
		if _, tombstoned := q.tombstones[ev.ID]; tombstoned {
			heap.Pop(&q.heap)
			delete(q.tombstones, ev.ID)
			continue
		}
		return ev.DeliverAt, true
	}
	return 0, false
}

// Len reports how many events remain in the queue, including any not-yet-
// discarded tombstoned ones.
func (q *Queue) Len() int {
	return q.heap.Len()
}

// eventHeap implements heap.Interface, ordering by (DeliverAt, ID).
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].DeliverAt != h[j].DeliverAt {
		return h[i].DeliverAt < h[j].DeliverAt
	}
	return h[i].ID < h[j].ID
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
