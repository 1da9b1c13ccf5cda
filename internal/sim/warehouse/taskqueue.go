package warehouse

import (
	"math/rand"
	"sort"
)

// TaskQueue is the bounded, self-replenishing set of requested items.
// It exclusively owns the Requested/not-Requested classification; the
// items themselves live in the env's item arena and are referenced by
// index only. All randomness flows through the injected source so that
// scenario tests are exactly reproducible.
type TaskQueue struct {
	depth     int
	requested map[int]struct{}
	order     []int // insertion order, for deterministic iteration
}

func NewTaskQueue(depth int) *TaskQueue {
	return &TaskQueue{
		depth:     depth,
		requested: map[int]struct{}{},
	}
}

func (q *TaskQueue) Len() int { return len(q.requested) }

func (q *TaskQueue) IsRequested(itemID int) bool {
	_, ok := q.requested[itemID]
	return ok
}

// Requested returns the current request set in insertion order.
func (q *TaskQueue) Requested() []int {
	out := make([]int, len(q.order))
	copy(out, q.order)
	return out
}

// RequestInitial clears the queue and draws up to depth items uniformly
// from the eligible pool. Called at env init and at every episode reset.
func (q *TaskQueue) RequestInitial(items []*Item, rng *rand.Rand) {
	q.requested = map[int]struct{}{}
	q.order = q.order[:0]
	q.Replenish(q.depth, items, rng)
}

// OnDelivered removes the item from the request set and draws one
// replacement. A shrinking queue is a valid terminal-approach state, not
// an error.
func (q *TaskQueue) OnDelivered(itemID int, items []*Item, rng *rand.Rand) {
	if _, ok := q.requested[itemID]; !ok {
		return
	}
	delete(q.requested, itemID)
	for i, id := range q.order {
		if id == itemID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	q.Replenish(1, items, rng)
}

// Replenish draws up to k eligible items uniformly at random and marks
// them requested. Membership is checked explicitly; an item never appears
// in the set twice.
func (q *TaskQueue) Replenish(k int, items []*Item, rng *rand.Rand) {
	for ; k > 0 && len(q.requested) < q.depth; k-- {
		eligible := q.eligible(items)
		if len(eligible) == 0 {
			return
		}
		id := eligible[rng.Intn(len(eligible))]
		q.requested[id] = struct{}{}
		q.order = append(q.order, id)
	}
}

func (q *TaskQueue) eligible(items []*Item) []int {
	ids := make([]int, 0, len(items))
	for _, it := range items {
		if !it.eligibleForRequest() {
			continue
		}
		if _, ok := q.requested[it.ID]; ok {
			continue
		}
		ids = append(ids, it.ID)
	}
	sort.Ints(ids)
	return ids
}

// NearestRequested returns the Euclidean-nearest requested item that is
// not currently carried, for reward shaping. Ties break on the lower id.
func (q *TaskQueue) NearestRequested(from Cell, items []*Item) (*Item, bool) {
	var best *Item
	bestDist := 0.0
	for _, id := range q.sortedIDs() {
		it := items[id]
		if it.State == ItemCarried {
			continue
		}
		d := Dist(from, it.Cell)
		if best == nil || d < bestDist {
			best = it
			bestDist = d
		}
	}
	return best, best != nil
}

func (q *TaskQueue) sortedIDs() []int {
	ids := make([]int, 0, len(q.requested))
	for id := range q.requested {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
