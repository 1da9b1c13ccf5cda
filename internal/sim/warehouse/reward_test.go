package warehouse

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestShaping_DecreaseOnlyAndCapped(t *testing.T) {
	r := rewardAssigner{cfg: RewardConfig{ShapingScale: 0.05, ShapingCap: 0.05}}

	if s := r.shaping(5, 4); !almost(s, 0.05) {
		t.Fatalf("one cell of progress = %v, want 0.05", s)
	}
	if s := r.shaping(4, 5); s != 0 {
		t.Fatalf("moving away must pay nothing, got %v", s)
	}
	if s := r.shaping(5, 5); s != 0 {
		t.Fatalf("standing still must pay nothing, got %v", s)
	}
	// Teleport-sized gains clamp to the cap.
	if s := r.shaping(100, 0); !almost(s, 0.05) {
		t.Fatalf("capped shaping = %v, want 0.05", s)
	}
}

func TestAssign_DeliverySplitsTeamCredit(t *testing.T) {
	r := rewardAssigner{cfg: RewardConfig{Delivery: 1.0, TeamDelivery: 0.1}}
	rewards := make([]float64, 3)
	r.assign(rewards, []Event{{Kind: EventDelivery, Agent: 1, Item: 0, Zone: 0}})

	if !almost(rewards[1], 1.0) {
		t.Fatalf("deliverer reward = %v, want 1.0", rewards[1])
	}
	if !almost(rewards[0], 0.1) || !almost(rewards[2], 0.1) {
		t.Fatalf("team rewards = %v, want 0.1 each", rewards)
	}
}

func TestAssign_EventComponentsSum(t *testing.T) {
	cfg := RewardConfig{Pickup: 0.5, Collision: -0.1, OffZoneDrop: -0.05, Completion: 2.0}
	r := rewardAssigner{cfg: cfg}
	rewards := make([]float64, 2)
	r.assign(rewards, []Event{
		{Kind: EventPickup, Agent: 0, Item: 1},
		{Kind: EventCollision, Agent: 0},
		{Kind: EventDrop, Agent: 1, Item: 2},
		{Kind: EventComplete, Agent: NoAgent},
	})

	if !almost(rewards[0], 0.5-0.1+2.0) {
		t.Fatalf("agent 0 reward = %v", rewards[0])
	}
	if !almost(rewards[1], -0.05+2.0) {
		t.Fatalf("agent 1 reward = %v", rewards[1])
	}
}
