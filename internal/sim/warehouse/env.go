package warehouse

import (
	"fmt"
	"math/rand"
)

// Env is the task-queue-driven multi-agent simulation kernel. It is a
// synchronous, single-process, tick-driven state machine: one Step call
// consumes the full joint action and mutates all shared state on the
// caller's goroutine. All state must be accessed from a single caller.
type Env struct {
	cfg     Config
	actions []primitive

	grid  *Grid
	occ   *Occupancy
	queue *TaskQueue

	agents []*Agent
	items  []*Item
	zones  []*DeliveryZone

	rewards rewardAssigner
	rng     *rand.Rand

	episode        int
	stepCount      int
	tick           uint64 // monotonic across episodes
	deliveredCount int    // deliveries this episode (can exceed pool size)
	deliveredOnce  []bool // per item: delivered at least once this episode

	// Scratch, reused across ticks.
	events    []Event
	proposals []moveProposal

	// Optional tick recorder (may be nil). Implemented in internal/persistence.
	tickLog TickLogger
}

// StepInfo is the per-step diagnostic payload.
type StepInfo struct {
	Episode        int `json:"episode"`
	Step           int `json:"step"`
	Pickups        int `json:"pickups"`
	Deliveries     int `json:"deliveries"`
	Drops          int `json:"drops"`
	Collisions     int `json:"collisions"`
	QueueDepth     int `json:"queue_depth"`
	DeliveredTotal int `json:"delivered_total"`

	// Completed: every pool item was delivered this episode.
	Completed bool `json:"completed,omitempty"`
}

type StepResult struct {
	Obs     [][]float64
	State   []float64
	Rewards []float64
	Done    bool
	Info    StepInfo

	// Digest fingerprints the post-step state (before any automatic
	// episode reset); replay verification compares against it.
	Digest string
}

func New(cfg Config) (*Env, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("warehouse config: %w", err)
	}
	acts, err := actionSet(cfg.Variant)
	if err != nil {
		return nil, err
	}

	e := &Env{
		cfg:     cfg,
		actions: acts,
		grid:    NewGrid(cfg.Width, cfg.Height, cfg.CellSize, cfg.Obstacles),
		queue:   NewTaskQueue(cfg.QueueDepth),
		rewards: rewardAssigner{cfg: cfg.Rewards},
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
	e.occ = NewOccupancy(e.grid)

	if err := e.placeItems(); err != nil {
		return nil, err
	}
	e.zones = make([]*DeliveryZone, len(cfg.Zones))
	for i, c := range cfg.Zones {
		e.zones[i] = &DeliveryZone{ID: i, Cell: c}
	}
	e.agents = make([]*Agent, cfg.NumAgents)
	for i := range e.agents {
		e.agents[i] = &Agent{ID: AgentID(i), Carrying: NoItem}
	}
	e.deliveredOnce = make([]bool, len(e.items))

	e.resetEpisode()
	return e, nil
}

// placeItems binds every item to its fixed home slot. Homes are chosen
// once at init (configured or drawn from free cells) and survive resets.
func (e *Env) placeItems() error {
	homes := e.cfg.ItemHomes
	if len(homes) == 0 {
		var err error
		homes, err = e.drawCells(e.cfg.NumItems, func(c Cell) bool {
			return e.grid.Walkable(c) && !e.isZone(c)
		})
		if err != nil {
			return fmt.Errorf("place items: %w", err)
		}
	}
	e.items = make([]*Item, len(homes))
	for i, h := range homes {
		e.items[i] = &Item{ID: i, Home: h, Cell: h, CarriedBy: NoAgent}
	}
	return nil
}

// drawCells picks n distinct cells satisfying ok, uniformly via the
// kernel rng. The candidate scan order is row-major, so results depend
// only on the seed.
func (e *Env) drawCells(n int, ok func(Cell) bool) ([]Cell, error) {
	var candidates []Cell
	for y := 0; y < e.grid.Height; y++ {
		for x := 0; x < e.grid.Width; x++ {
			c := Cell{X: x, Y: y}
			if ok(c) {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) < n {
		return nil, fmt.Errorf("need %d cells, only %d eligible", n, len(candidates))
	}
	e.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates[:n], nil
}

func (e *Env) isZone(c Cell) bool {
	for _, z := range e.cfg.Zones {
		if z == c {
			return true
		}
	}
	return false
}

// resetEpisode returns the kernel to a fresh Running state: agents back
// to spawn poses, items home, counters zeroed, queue re-drawn.
func (e *Env) resetEpisode() {
	e.episode++
	e.stepCount = 0
	e.deliveredCount = 0
	for i := range e.deliveredOnce {
		e.deliveredOnce[i] = false
	}
	for _, it := range e.items {
		it.reset()
	}
	for _, z := range e.zones {
		z.Delivered = 0
	}

	e.occ.Clear()
	if len(e.cfg.AgentSpawns) > 0 {
		for i, a := range e.agents {
			a.SpawnCell = e.cfg.AgentSpawns[i]
			a.SpawnHeading = North
		}
	} else {
		// Randomized spawn: distinct free cells, random heading.
		spawns, err := e.drawCells(len(e.agents), e.grid.Walkable)
		if err != nil {
			// Validate guarantees enough free cells; keep previous spawns if
			// this ever regresses rather than corrupting occupancy.
			spawns = nil
		}
		for i, a := range e.agents {
			if spawns != nil {
				a.SpawnCell = spawns[i]
			}
			a.SpawnHeading = Heading(e.rng.Intn(4))
		}
	}
	for _, a := range e.agents {
		a.resetToSpawn()
		e.occ.Place(a.ID, a.Cell)
	}

	e.queue.RequestInitial(e.items, e.rng)
}

// Reset restarts the episode and returns the initial joint observation.
// Shapes are identical across calls; values differ with randomized
// spawn/queue selection.
func (e *Env) Reset() (obs [][]float64, state []float64) {
	e.resetEpisode()
	if e.tickLog != nil {
		// Marker entry with no actions so a replay can mirror explicit
		// resets, which consume the rng.
		_ = e.tickLog.WriteTick(TickLogEntry{
			Episode: e.episode,
			Step:    0,
			Tick:    e.tick,
			Digest:  e.StateDigest(),
		})
	}
	return e.buildAllObs(), e.buildState()
}

// Step advances the simulation by one tick.
//
// The returned error is reserved for caller contract violations (wrong
// action count, action index outside the declared space); every in-sim
// anomaly is absorbed into reward/occupancy state. When the episode hits
// a terminal condition the result carries Done=true with the terminal
// observation, and the kernel resets itself before returning.
func (e *Env) Step(actions []int) (StepResult, error) {
	if len(actions) != len(e.agents) {
		return StepResult{}, fmt.Errorf("joint action has %d entries, want %d", len(actions), len(e.agents))
	}
	for i, a := range actions {
		if a < 0 || a >= len(e.actions) {
			return StepResult{}, fmt.Errorf("agent %d: action %d outside discrete space [0,%d)", i, a, len(e.actions))
		}
	}

	e.events = e.events[:0]
	e.proposals = e.proposals[:0]

	// Fix each agent's shaping goal at tick start: nearest requested item
	// when empty-handed, nearest delivery zone when carrying.
	goals := e.captureGoals()

	// Dispatch: turns commit immediately, moves become proposals, the
	// pickup/drop phase runs after arbitration.
	for i, a := range e.agents {
		switch e.actions[actions[i]] {
		case primTurnLeft:
			a.Heading = a.Heading.Left()
		case primTurnRight:
			a.Heading = a.Heading.Right()
		case primForward:
			e.proposals = append(e.proposals, moveProposal{Agent: a.ID, From: a.Cell, To: a.Heading.Forward(a.Cell)})
		case primBackward:
			e.proposals = append(e.proposals, moveProposal{Agent: a.ID, From: a.Cell, To: a.Heading.Backward(a.Cell)})
		}
	}

	// Arbitration: ascending id, first-come-first-served within the tick.
	// Proposal order follows the agents slice, which is id-ordered.
	verdicts := resolveMoves(e.occ, e.proposals)
	for i, p := range e.proposals {
		switch verdicts[i] {
		case MoveOK:
			a := e.agents[p.Agent]
			a.Cell = p.To
			if a.IsCarrying() {
				e.items[a.Carrying].Cell = p.To
			}
		case MoveOccupied:
			// Agent-vs-agent conflict is a collision event; walls and
			// obstacles stay silent no-ops.
			e.events = append(e.events, Event{Kind: EventCollision, Agent: p.Agent, Item: NoItem, Zone: -1})
		}
	}

	// Pickup/drop/deliver, ascending id.
	for i, a := range e.agents {
		if e.actions[actions[i]] == primPickupOrDrop {
			e.applyPickupOrDrop(a)
		}
	}

	// Delivered items travel home.
	for _, it := range e.items {
		if it.State == ItemReturning {
			if it.returnTicks > 0 {
				it.returnTicks--
			}
			if it.returnTicks == 0 {
				it.Cell = it.Home
				it.State = ItemAtHome
			}
		}
	}

	allDelivered := true
	for _, d := range e.deliveredOnce {
		if !d {
			allDelivered = false
			break
		}
	}
	e.stepCount++
	terminal := e.stepCount >= e.cfg.MaxSteps || allDelivered
	if allDelivered {
		e.events = append(e.events, Event{Kind: EventComplete, Agent: NoAgent, Item: NoItem, Zone: -1})
	}

	rewards := make([]float64, len(e.agents))
	for i, g := range goals {
		if g.has {
			rewards[i] += e.rewards.shaping(g.dist, Dist(e.agents[i].Cell, g.target))
		}
	}
	e.rewards.assign(rewards, e.events)
	for i, a := range e.agents {
		a.EpisodeReward += rewards[i]
	}

	e.tick++
	res := StepResult{
		Obs:     e.buildAllObs(),
		State:   e.buildState(),
		Rewards: rewards,
		Done:    terminal,
		Info:    e.stepInfo(),
		Digest:  e.StateDigest(),
	}

	if e.tickLog != nil {
		_ = e.tickLog.WriteTick(TickLogEntry{
			Episode: e.episode,
			Step:    e.stepCount,
			Tick:    e.tick,
			Actions: append([]int(nil), actions...),
			Rewards: append([]float64(nil), rewards...),
			Events:  append([]Event(nil), e.events...),
			Done:    terminal,
			Digest:  res.Digest,
		})
	}

	// Terminal episodes reset automatically; the result above still
	// describes the terminal state.
	if terminal {
		e.resetEpisode()
	}
	return res, nil
}

type goal struct {
	has    bool
	target Cell
	dist   float64
}

func (e *Env) captureGoals() []goal {
	goals := make([]goal, len(e.agents))
	for i, a := range e.agents {
		if a.IsCarrying() {
			if z := e.nearestZone(a.Cell); z != nil {
				goals[i] = goal{has: true, target: z.Cell, dist: Dist(a.Cell, z.Cell)}
			}
			continue
		}
		if it, ok := e.queue.NearestRequested(a.Cell, e.items); ok {
			goals[i] = goal{has: true, target: it.Cell, dist: Dist(a.Cell, it.Cell)}
		}
	}
	return goals
}

func (e *Env) nearestZone(from Cell) *DeliveryZone {
	var best *DeliveryZone
	bestDist := 0.0
	for _, z := range e.zones {
		d := Dist(from, z.Cell)
		if best == nil || d < bestDist {
			best = z
			bestDist = d
		}
	}
	return best
}

// applyPickupOrDrop implements the dual-use load/unload action.
func (e *Env) applyPickupOrDrop(a *Agent) {
	if !a.IsCarrying() {
		it := e.nearestPickable(a.Cell)
		if it == nil {
			return
		}
		it.State = ItemCarried
		it.CarriedBy = a.ID
		it.Cell = a.Cell
		a.Carrying = it.ID
		e.events = append(e.events, Event{Kind: EventPickup, Agent: a.ID, Item: it.ID, Zone: -1})
		return
	}

	it := e.items[a.Carrying]
	if z := e.zoneWithin(a.Cell, e.cfg.DeliveryRadius); z != nil && e.queue.IsRequested(it.ID) {
		// Delivery: credit, return the item home, replenish the queue.
		z.Delivered++
		e.deliveredCount++
		e.deliveredOnce[it.ID] = true
		it.State = ItemReturning
		it.CarriedBy = NoAgent
		it.returnTicks = e.cfg.ReturnTicks
		if it.returnTicks == 0 {
			it.Cell = it.Home
			it.State = ItemAtHome
		}
		a.Carrying = NoItem
		e.queue.OnDelivered(it.ID, e.items, e.rng)
		e.events = append(e.events, Event{Kind: EventDelivery, Agent: a.ID, Item: it.ID, Zone: z.ID})
		return
	}

	// Off-zone (or credit-less) drop: the item is set down in place, not
	// returned home, and no delivery credit is granted.
	it.State = ItemDropped
	it.CarriedBy = NoAgent
	it.Cell = a.Cell
	a.Carrying = NoItem
	e.events = append(e.events, Event{Kind: EventDrop, Agent: a.ID, Item: it.ID, Zone: -1})
}

// nearestPickable scans the item arena for the closest attachable item
// within the pickup radius. Ties break on the lower item id (scan order).
func (e *Env) nearestPickable(from Cell) *Item {
	var best *Item
	bestDist := 0.0
	for _, it := range e.items {
		if !it.eligibleForPickup() {
			continue
		}
		d := Dist(from, it.Cell)
		if d > e.cfg.PickupRadius {
			continue
		}
		if best == nil || d < bestDist {
			best = it
			bestDist = d
		}
	}
	return best
}

func (e *Env) zoneWithin(from Cell, radius float64) *DeliveryZone {
	z := e.nearestZone(from)
	if z == nil || Dist(from, z.Cell) > radius {
		return nil
	}
	return z
}

func (e *Env) stepInfo() StepInfo {
	info := StepInfo{
		Episode:        e.episode,
		Step:           e.stepCount,
		QueueDepth:     e.queue.Len(),
		DeliveredTotal: e.deliveredCount,
	}
	for _, ev := range e.events {
		switch ev.Kind {
		case EventPickup:
			info.Pickups++
		case EventDelivery:
			info.Deliveries++
		case EventDrop:
			info.Drops++
		case EventCollision:
			info.Collisions++
		case EventComplete:
			info.Completed = true
		}
	}
	return info
}

// Declared-at-configuration-time shape surface.

func (e *Env) NumAgents() int  { return len(e.agents) }
func (e *Env) NumActions() int { return len(e.actions) }
func (e *Env) NumItems() int   { return len(e.items) }
func (e *Env) MaxSteps() int   { return e.cfg.MaxSteps }
func (e *Env) Episode() int    { return e.episode }
func (e *Env) StepCount() int  { return e.stepCount }
func (e *Env) Tick() uint64    { return e.tick }
func (e *Env) Config() Config  { return e.cfg }

// SetTickLogger attaches a per-step recorder. Pass nil to disable.
// Must not be called concurrently with Step.
func (e *Env) SetTickLogger(l TickLogger) { e.tickLog = l }

// DeliveredCount is this episode's delivery total so far.
func (e *Env) DeliveredCount() int { return e.deliveredCount }

// QueueDepth is the current number of requested items.
func (e *Env) QueueDepth() int { return e.queue.Len() }

// RequestedItems returns the request set in insertion order (tests/tools).
func (e *Env) RequestedItems() []int { return e.queue.Requested() }

// AgentView returns a copy of one agent's state for inspection.
func (e *Env) AgentView(id AgentID) (Agent, bool) {
	if int(id) < 0 || int(id) >= len(e.agents) {
		return Agent{}, false
	}
	return *e.agents[id], true
}

// ItemView returns a copy of one item's state for inspection.
func (e *Env) ItemView(id int) (Item, bool) {
	if id < 0 || id >= len(e.items) {
		return Item{}, false
	}
	return *e.items[id], true
}

// ZoneView returns a copy of one zone's state for inspection.
func (e *Env) ZoneView(id int) (DeliveryZone, bool) {
	if id < 0 || id >= len(e.zones) {
		return DeliveryZone{}, false
	}
	return *e.zones[id], true
}
