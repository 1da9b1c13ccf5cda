package warehouse

import "fmt"

// Config is the full kernel configuration surface. Observation and state
// vector sizes are a pure function of this struct, so anything that would
// change a declared shape must fail Validate rather than be truncated.
type Config struct {
	ID string

	Width    int
	Height   int
	CellSize float64

	Obstacles []Cell

	NumAgents   int
	AgentSpawns []Cell // optional; randomized over free cells when empty

	NumItems  int
	ItemHomes []Cell // optional; randomized over free cells when empty

	Zones []Cell

	QueueDepth int
	MaxSteps   int

	Variant Variant
	Seed    int64

	// Capture radii, in cells.
	PickupRadius   float64
	DeliveryRadius float64

	// Observation assembly.
	ObsRadius       float64 // neighbor/item visibility filter
	MaxNearbyAgents int
	MaxNearbyItems  int

	// Ticks a delivered item spends in transit back to its home slot.
	ReturnTicks int

	Rewards RewardConfig
}

type RewardConfig struct {
	Pickup       float64
	Delivery     float64
	TeamDelivery float64 // paid to every agent except the deliverer
	Collision    float64 // negative
	OffZoneDrop  float64 // negative
	Completion   float64 // paid to all agents when the pool is fully delivered
	ShapingScale float64 // per cell of progress toward the current goal
	ShapingCap   float64 // hard per-step bound on the shaping component
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = "warehouse"
	}
	if c.Width <= 0 {
		c.Width = 10
	}
	if c.Height <= 0 {
		c.Height = 10
	}
	if c.CellSize <= 0 {
		c.CellSize = 1.0
	}
	if c.NumAgents <= 0 {
		c.NumAgents = 4
	}
	if c.NumItems <= 0 {
		c.NumItems = len(c.ItemHomes)
	}
	if c.NumItems <= 0 {
		c.NumItems = 8
	}
	if len(c.Zones) == 0 {
		c.Zones = []Cell{{X: c.Width - 1, Y: c.Height - 1}, {X: 0, Y: c.Height - 1}}
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = 3
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = 1000
	}
	if c.Variant == "" {
		c.Variant = VariantSix
	}
	if c.PickupRadius <= 0 {
		c.PickupRadius = 1.0
	}
	if c.DeliveryRadius <= 0 {
		c.DeliveryRadius = 1.0
	}
	if c.ObsRadius <= 0 {
		c.ObsRadius = 5.0
	}
	if c.MaxNearbyAgents <= 0 {
		c.MaxNearbyAgents = 3
	}
	if c.MaxNearbyItems <= 0 {
		c.MaxNearbyItems = 9
	}
	if c.ReturnTicks < 0 {
		c.ReturnTicks = 0
	}
	c.Rewards.applyDefaults()
}

func (r *RewardConfig) applyDefaults() {
	if r.Pickup == 0 {
		r.Pickup = 0.5
	}
	if r.Delivery == 0 {
		r.Delivery = 1.0
	}
	if r.TeamDelivery == 0 {
		r.TeamDelivery = 0.1
	}
	if r.Collision == 0 {
		r.Collision = -0.1
	}
	if r.OffZoneDrop == 0 {
		r.OffZoneDrop = -0.05
	}
	if r.Completion == 0 {
		r.Completion = 2.0
	}
	if r.ShapingScale == 0 {
		r.ShapingScale = 0.05
	}
	if r.ShapingCap == 0 {
		r.ShapingCap = 0.05
	}
}

// Validate rejects configurations the kernel must refuse to start with.
// Downstream observation shapes depend on these counts, so silently
// truncating any of them would corrupt the learner contract.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("grid %dx%d: dimensions must be positive", c.Width, c.Height)
	}
	if _, err := actionSet(c.Variant); err != nil {
		return err
	}
	grid := NewGrid(c.Width, c.Height, c.CellSize, c.Obstacles)
	for _, o := range c.Obstacles {
		if !grid.InBounds(o) {
			return fmt.Errorf("obstacle %v out of bounds", o)
		}
	}
	free := c.Width*c.Height - len(c.Obstacles)
	if c.NumAgents+c.NumItems > free {
		return fmt.Errorf("%d agents + %d items exceed %d free cells", c.NumAgents, c.NumItems, free)
	}
	if len(c.AgentSpawns) > 0 && len(c.AgentSpawns) < c.NumAgents {
		return fmt.Errorf("%d spawn points for %d agents", len(c.AgentSpawns), c.NumAgents)
	}
	seen := map[Cell]struct{}{}
	for _, s := range c.AgentSpawns {
		if !grid.Walkable(s) {
			return fmt.Errorf("spawn point %v not walkable", s)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("duplicate spawn point %v", s)
		}
		seen[s] = struct{}{}
	}
	if len(c.ItemHomes) > 0 && len(c.ItemHomes) != c.NumItems {
		return fmt.Errorf("%d item homes for %d items", len(c.ItemHomes), c.NumItems)
	}
	for _, h := range c.ItemHomes {
		if !grid.Walkable(h) {
			return fmt.Errorf("item home %v not walkable", h)
		}
	}
	if len(c.Zones) == 0 {
		return fmt.Errorf("no delivery zones")
	}
	for _, z := range c.Zones {
		if !grid.Walkable(z) {
			return fmt.Errorf("delivery zone %v not walkable", z)
		}
	}
	if c.QueueDepth > c.NumItems {
		return fmt.Errorf("queue depth %d exceeds item pool %d", c.QueueDepth, c.NumItems)
	}
	if c.Rewards.ShapingCap < 0 {
		return fmt.Errorf("shaping cap must be non-negative")
	}
	return nil
}
