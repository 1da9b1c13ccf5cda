package log

import (
	"path/filepath"
	"testing"

	"gridware.ai/internal/sim/warehouse"
)

func TestTickLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)

	want := []warehouse.TickLogEntry{
		{Episode: 1, Step: 0, Tick: 0, Digest: "aaaa"},
		{Episode: 1, Step: 1, Tick: 1, Actions: []int{1, 0}, Rewards: []float64{0.5, 0}, Digest: "bbbb"},
		{
			Episode: 1, Step: 2, Tick: 2,
			Actions: []int{5, 0},
			Rewards: []float64{1.0, 0.1},
			Events:  []warehouse.Event{{Kind: warehouse.EventDelivery, Agent: 0, Item: 3, Zone: 1}},
			Done:    true,
			Digest:  "cccc",
		},
	}
	for _, e := range want {
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write tick: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var got []warehouse.TickLogEntry
	err := ReadTicks(filepath.Join(dir, "ticks.jsonl.zst"), func(e warehouse.TickLogEntry) bool {
		got = append(got, e)
		return true
	})
	if err != nil {
		t.Fatalf("read ticks: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("entries = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Tick != want[i].Tick || got[i].Digest != want[i].Digest || got[i].Done != want[i].Done {
			t.Fatalf("entry %d mismatch: %+v vs %+v", i, got[i], want[i])
		}
	}
	if len(got[2].Events) != 1 || got[2].Events[0].Kind != warehouse.EventDelivery {
		t.Fatalf("events lost in round trip: %+v", got[2])
	}
	if got[1].Actions[0] != 1 {
		t.Fatalf("actions lost in round trip")
	}
}

func TestReadTicks_EarlyStop(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	for i := 0; i < 10; i++ {
		if err := l.WriteTick(warehouse.TickLogEntry{Tick: uint64(i), Digest: "d"}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	n := 0
	err := ReadTicks(filepath.Join(dir, "ticks.jsonl.zst"), func(warehouse.TickLogEntry) bool {
		n++
		return n < 3
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 3 {
		t.Fatalf("visited %d entries, want 3", n)
	}
}

func TestReadTicks_MissingFile(t *testing.T) {
	err := ReadTicks(filepath.Join(t.TempDir(), "absent.jsonl.zst"), func(warehouse.TickLogEntry) bool { return true })
	if err == nil {
		t.Fatalf("expected open error")
	}
}
