package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"gridware.ai/internal/sim/warehouse"
)

// File is the YAML scenario surface. Zero values defer to the kernel's
// defaults; validation happens in warehouse.New, so configuration
// mistakes fail when the kernel is constructed, not here.
type File struct {
	ID string `yaml:"id"`

	Grid GridSpec `yaml:"grid"`

	Obstacles [][2]int `yaml:"obstacles,omitempty"`

	Agents      int      `yaml:"agents"`
	AgentSpawns [][2]int `yaml:"agent_spawns,omitempty"`

	Items     int      `yaml:"items"`
	ItemHomes [][2]int `yaml:"item_homes,omitempty"`

	Zones [][2]int `yaml:"zones,omitempty"`

	QueueDepth int    `yaml:"queue_depth"`
	MaxSteps   int    `yaml:"max_steps"`
	Variant    string `yaml:"variant,omitempty"` // "six" (default) or "five"
	Seed       int64  `yaml:"seed"`

	PickupRadius   float64 `yaml:"pickup_radius,omitempty"`
	DeliveryRadius float64 `yaml:"delivery_radius,omitempty"`
	ReturnTicks    int     `yaml:"return_ticks,omitempty"`

	Obs     ObsSpec    `yaml:"obs,omitempty"`
	Rewards RewardSpec `yaml:"rewards,omitempty"`
}

type GridSpec struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	CellSize float64 `yaml:"cell_size,omitempty"`
}

type ObsSpec struct {
	Radius    float64 `yaml:"radius,omitempty"`
	MaxAgents int     `yaml:"max_agents,omitempty"`
	MaxItems  int     `yaml:"max_items,omitempty"`
}

type RewardSpec struct {
	Pickup       float64 `yaml:"pickup,omitempty"`
	Delivery     float64 `yaml:"delivery,omitempty"`
	TeamDelivery float64 `yaml:"team_delivery,omitempty"`
	Collision    float64 `yaml:"collision,omitempty"`
	OffZoneDrop  float64 `yaml:"off_zone_drop,omitempty"`
	Completion   float64 `yaml:"completion,omitempty"`
	ShapingScale float64 `yaml:"shaping_scale,omitempty"`
	ShapingCap   float64 `yaml:"shaping_cap,omitempty"`
}

// Load reads a scenario file into a kernel config. An empty path yields
// the default scenario.
func Load(path string) (warehouse.Config, error) {
	var f File
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return warehouse.Config{}, err
		}
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return warehouse.Config{}, fmt.Errorf("scenario %s: %w", path, err)
		}
	}
	cfg := f.Config()
	return cfg, nil
}

// Config converts the YAML surface into the kernel's Config. Validation
// is the kernel's job (warehouse.New); this is a pure mapping.
func (f File) Config() warehouse.Config {
	return warehouse.Config{
		ID:              f.ID,
		Width:           f.Grid.Width,
		Height:          f.Grid.Height,
		CellSize:        f.Grid.CellSize,
		Obstacles:       cells(f.Obstacles),
		NumAgents:       f.Agents,
		AgentSpawns:     cells(f.AgentSpawns),
		NumItems:        f.Items,
		ItemHomes:       cells(f.ItemHomes),
		Zones:           cells(f.Zones),
		QueueDepth:      f.QueueDepth,
		MaxSteps:        f.MaxSteps,
		Variant:         warehouse.Variant(f.Variant),
		Seed:            f.Seed,
		PickupRadius:    f.PickupRadius,
		DeliveryRadius:  f.DeliveryRadius,
		ReturnTicks:     f.ReturnTicks,
		ObsRadius:       f.Obs.Radius,
		MaxNearbyAgents: f.Obs.MaxAgents,
		MaxNearbyItems:  f.Obs.MaxItems,
		Rewards: warehouse.RewardConfig{
			Pickup:       f.Rewards.Pickup,
			Delivery:     f.Rewards.Delivery,
			TeamDelivery: f.Rewards.TeamDelivery,
			Collision:    f.Rewards.Collision,
			OffZoneDrop:  f.Rewards.OffZoneDrop,
			Completion:   f.Rewards.Completion,
			ShapingScale: f.Rewards.ShapingScale,
			ShapingCap:   f.Rewards.ShapingCap,
		},
	}
}

func cells(pairs [][2]int) []warehouse.Cell {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]warehouse.Cell, len(pairs))
	for i, p := range pairs {
		out[i] = warehouse.Cell{X: p[0], Y: p[1]}
	}
	return out
}
