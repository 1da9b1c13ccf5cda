package warehouse

// Heading is a 4-way discrete orientation.
type Heading int

const (
	North Heading = iota
	East
	South
	West
)

func (h Heading) String() string {
	switch h {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return "?"
}

// Forward returns the cell one step ahead of c under heading h.
// Grid Y grows northward.
func (h Heading) Forward(c Cell) Cell {
	switch h {
	case North:
		return Cell{X: c.X, Y: c.Y + 1}
	case East:
		return Cell{X: c.X + 1, Y: c.Y}
	case South:
		return Cell{X: c.X, Y: c.Y - 1}
	case West:
		return Cell{X: c.X - 1, Y: c.Y}
	}
	return c
}

func (h Heading) Backward(c Cell) Cell {
	return h.Opposite().Forward(c)
}

func (h Heading) Left() Heading     { return (h + 3) % 4 }
func (h Heading) Right() Heading    { return (h + 1) % 4 }
func (h Heading) Opposite() Heading { return (h + 2) % 4 }

// Agent is one robot's per-episode state. Agents are created at init and
// reset (never destroyed) at episode boundaries. Carrying holds the index
// of the carried item, or NoItem.
type Agent struct {
	ID      AgentID
	Cell    Cell
	Heading Heading

	Carrying int // item index, NoItem when empty

	SpawnCell    Cell
	SpawnHeading Heading

	// EpisodeReward accumulates this agent's reward over the episode.
	EpisodeReward float64
}

const NoItem = -1

func (a *Agent) IsCarrying() bool { return a.Carrying != NoItem }

func (a *Agent) resetToSpawn() {
	a.Cell = a.SpawnCell
	a.Heading = a.SpawnHeading
	a.Carrying = NoItem
	a.EpisodeReward = 0
}
