package statementq

import "sync"

// Queue is the in-process FIFO of records awaiting a flush. It has no capacity limit;
// the Controller uses its length as a flush trigger.
type Queue struct {
	mu    sync.Mutex
	items []Record
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends records in order.
func (q *Queue) Push(records ...Record) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, records...)

	return len(q.items)
}

// PushFront puts records back at the head of the queue, keeping their order.
func (q *Queue) PushFront(records ...Record) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := make([]Record, 0, len(records)+len(q.items))
	items = append(items, records...)
	q.items = append(items, q.items...)

	return len(q.items)
}

// Len returns the number of queued records.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Drain returns every queued record and leaves the queue empty.
// Records pushed after Drain returns belong to the next drain.
func (q *Queue) Drain() []Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil

	return items
}

// IDs returns the ids of the queued records in order.
func (q *Queue) IDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]string, len(q.items))
	for i := range q.items {
		ids[i] = q.items[i].ID
	}

	return ids
}
