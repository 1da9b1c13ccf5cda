package warehouse

import "testing"

func TestConfig_DefaultsMatchDeclaredShapes(t *testing.T) {
	env, err := New(Config{Seed: 1})
	if err != nil {
		t.Fatalf("default env: %v", err)
	}

	if env.NumAgents() != 4 {
		t.Fatalf("agents = %d, want 4", env.NumAgents())
	}
	if env.NumActions() != 6 {
		t.Fatalf("actions = %d, want 6", env.NumActions())
	}
	if env.NumItems() != 8 {
		t.Fatalf("items = %d, want 8", env.NumItems())
	}
	if env.MaxSteps() != 1000 {
		t.Fatalf("max steps = %d, want 1000", env.MaxSteps())
	}
	if env.ObsSize() != 47 {
		t.Fatalf("obs size = %d, want 47", env.ObsSize())
	}
	if env.StateSize() != 52 {
		t.Fatalf("state size = %d, want 52", env.StateSize())
	}
}

func TestConfig_ValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"obstacle out of bounds", Config{Obstacles: []Cell{{X: 50, Y: 0}}}},
		{"zone out of bounds", Config{Zones: []Cell{{X: -1, Y: 0}}}},
		{"spawn on obstacle", Config{
			Obstacles:   []Cell{{X: 2, Y: 2}},
			AgentSpawns: []Cell{{X: 2, Y: 2}, {X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		}},
		{"duplicate spawn points", Config{
			NumAgents:   2,
			AgentSpawns: []Cell{{X: 1, Y: 1}, {X: 1, Y: 1}},
		}},
		{"item home on obstacle", Config{
			Obstacles: []Cell{{X: 2, Y: 2}},
			NumItems:  1,
			ItemHomes: []Cell{{X: 2, Y: 2}},
		}},
		{"zone on obstacle", Config{
			Obstacles: []Cell{{X: 3, Y: 3}},
			Zones:     []Cell{{X: 3, Y: 3}},
		}},
		{"too few spawns", Config{NumAgents: 4, AgentSpawns: []Cell{{X: 0, Y: 0}}}},
		{"item home count mismatch", Config{NumItems: 3, ItemHomes: []Cell{{X: 0, Y: 0}}}},
		{"queue deeper than pool", Config{NumItems: 2, QueueDepth: 5}},
		{"unknown variant", Config{Variant: "nine"}},
		{"overcrowded grid", Config{Width: 2, Height: 2, NumAgents: 3, NumItems: 3}},
		{"negative shaping cap", Config{Rewards: RewardConfig{ShapingCap: -1}}},
	}
	for _, tc := range cases {
		if _, err := New(tc.cfg); err == nil {
			t.Fatalf("%s: expected config rejection", tc.name)
		}
	}
}

func TestConfig_FiveActionVariant(t *testing.T) {
	env, err := New(Config{Variant: VariantFive, Seed: 1})
	if err != nil {
		t.Fatalf("five-action env: %v", err)
	}
	if env.NumActions() != 5 {
		t.Fatalf("actions = %d, want 5", env.NumActions())
	}
}

func TestConfig_ItemHomesImplyPoolSize(t *testing.T) {
	env, err := New(Config{
		ItemHomes: []Cell{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}},
		Seed:      1,
	})
	if err != nil {
		t.Fatalf("env: %v", err)
	}
	if env.NumItems() != 3 {
		t.Fatalf("items = %d, want 3 (from homes)", env.NumItems())
	}
}
