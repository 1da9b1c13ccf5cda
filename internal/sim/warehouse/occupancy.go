package warehouse

// AgentID is a stable integer agent identity, assigned at init.
type AgentID int

const NoAgent AgentID = -1

// MoveVerdict classifies the outcome of a proposed cell transition.
type MoveVerdict int

const (
	MoveOK MoveVerdict = iota
	MoveOutOfBounds
	MoveObstacle
	MoveOccupied
)

func (v MoveVerdict) String() string {
	switch v {
	case MoveOK:
		return "OK"
	case MoveOutOfBounds:
		return "OUT_OF_BOUNDS"
	case MoveObstacle:
		return "OBSTACLE"
	case MoveOccupied:
		return "OCCUPIED"
	}
	return "UNKNOWN"
}

// Occupancy tracks which agent stands on which cell. It is mutated only
// from the tick loop; the deterministic per-tick processing order is the
// only concurrency control it needs.
type Occupancy struct {
	grid   *Grid
	byCell map[Cell]AgentID
}

func NewOccupancy(g *Grid) *Occupancy {
	return &Occupancy{grid: g, byCell: map[Cell]AgentID{}}
}

func (o *Occupancy) OccupantAt(c Cell) (AgentID, bool) {
	id, ok := o.byCell[c]
	return id, ok
}

// Place puts an agent on a cell without validation. Init/reset only.
func (o *Occupancy) Place(id AgentID, c Cell) {
	o.byCell[c] = id
}

// Move validates and applies a single cell transition. On any rejection
// the map is left untouched and the verdict names the reason.
func (o *Occupancy) Move(id AgentID, from, to Cell) MoveVerdict {
	if !o.grid.InBounds(to) {
		return MoveOutOfBounds
	}
	if o.grid.Obstacle(to) {
		return MoveObstacle
	}
	if occ, ok := o.byCell[to]; ok && occ != id {
		return MoveOccupied
	}
	if cur, ok := o.byCell[from]; ok && cur == id {
		delete(o.byCell, from)
	}
	o.byCell[to] = id
	return MoveOK
}

func (o *Occupancy) Clear() {
	for c := range o.byCell {
		delete(o.byCell, c)
	}
}
