package warehouse

import (
	"math/rand"
	"testing"
)

func poolOf(n int) []*Item {
	items := make([]*Item, n)
	for i := range items {
		home := Cell{X: i, Y: 0}
		items[i] = &Item{ID: i, Home: home, Cell: home, CarriedBy: NoAgent}
	}
	return items
}

func TestTaskQueue_InitialDrawBoundedAndDistinct(t *testing.T) {
	items := poolOf(8)
	q := NewTaskQueue(3)
	q.RequestInitial(items, rand.New(rand.NewSource(1)))

	if q.Len() != 3 {
		t.Fatalf("queue len = %d, want 3", q.Len())
	}
	seen := map[int]bool{}
	for _, id := range q.Requested() {
		if seen[id] {
			t.Fatalf("item %d requested twice", id)
		}
		seen[id] = true
		if id < 0 || id >= len(items) {
			t.Fatalf("requested id %d outside pool", id)
		}
	}
}

func TestTaskQueue_DeliveryReplenishes(t *testing.T) {
	items := poolOf(8)
	rng := rand.New(rand.NewSource(2))
	q := NewTaskQueue(3)
	q.RequestInitial(items, rng)

	victim := q.Requested()[0]
	// A freshly delivered item travels home; not eligible for re-request.
	items[victim].State = ItemReturning
	q.OnDelivered(victim, items, rng)

	if q.IsRequested(victim) {
		t.Fatalf("delivered item must leave the request set")
	}
	if q.Len() != 3 {
		t.Fatalf("queue len after replenish = %d, want 3", q.Len())
	}
	for _, id := range q.Requested() {
		if id == victim {
			t.Fatalf("returning item re-drawn into the queue")
		}
	}
}

func TestTaskQueue_ShrinksWhenPoolExhausted(t *testing.T) {
	items := poolOf(1)
	rng := rand.New(rand.NewSource(3))
	q := NewTaskQueue(1)
	q.RequestInitial(items, rng)

	if q.Len() != 1 {
		t.Fatalf("queue len = %d, want 1", q.Len())
	}
	items[0].State = ItemReturning
	q.OnDelivered(0, items, rng)
	if q.Len() != 0 {
		t.Fatalf("queue must shrink when nothing is eligible, len = %d", q.Len())
	}
}

func TestTaskQueue_OnDeliveredIgnoresUnrequested(t *testing.T) {
	items := poolOf(4)
	rng := rand.New(rand.NewSource(4))
	q := NewTaskQueue(2)
	q.RequestInitial(items, rng)

	var outside int
	for i := range items {
		if !q.IsRequested(i) {
			outside = i
			break
		}
	}
	before := q.Requested()
	q.OnDelivered(outside, items, rng)
	after := q.Requested()
	if len(before) != len(after) {
		t.Fatalf("unrequested delivery changed the queue: %v -> %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("unrequested delivery reordered the queue")
		}
	}
}

func TestTaskQueue_NearestRequestedSkipsCarried(t *testing.T) {
	items := poolOf(3)
	q := NewTaskQueue(3)
	q.RequestInitial(items, rand.New(rand.NewSource(5)))

	from := Cell{X: 0, Y: 0}
	// Item 0 sits on the query cell; carrying it must fall through to the
	// next nearest.
	items[0].State = ItemCarried
	it, ok := q.NearestRequested(from, items)
	if !ok {
		t.Fatalf("expected a nearest requested item")
	}
	if it.ID == 0 {
		t.Fatalf("carried item must not be a shaping goal")
	}
	if it.ID != 1 {
		t.Fatalf("nearest = %d, want 1", it.ID)
	}
}

func TestTaskQueue_NearestRequestedTieBreaksLowerID(t *testing.T) {
	items := []*Item{
		{ID: 0, Cell: Cell{X: 2, Y: 0}, CarriedBy: NoAgent},
		{ID: 1, Cell: Cell{X: 0, Y: 2}, CarriedBy: NoAgent},
	}
	q := NewTaskQueue(2)
	q.RequestInitial(items, rand.New(rand.NewSource(6)))

	it, ok := q.NearestRequested(Cell{X: 0, Y: 0}, items)
	if !ok || it.ID != 0 {
		t.Fatalf("equidistant tie must break on lower id, got %v", it)
	}
}
