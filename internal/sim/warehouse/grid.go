package warehouse

import "math"

// Cell is a discrete grid position; the unit of occupancy and collision.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is the static warehouse floor: bounds, cell size and the obstacle
// bitmap. It is immutable after construction and safe to share.
type Grid struct {
	Width    int
	Height   int
	CellSize float64

	obstacles map[Cell]bool
}

func NewGrid(width, height int, cellSize float64, obstacles []Cell) *Grid {
	g := &Grid{
		Width:     width,
		Height:    height,
		CellSize:  cellSize,
		obstacles: map[Cell]bool{},
	}
	for _, c := range obstacles {
		g.obstacles[c] = true
	}
	return g
}

func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

func (g *Grid) Obstacle(c Cell) bool {
	return g.obstacles[c]
}

// Walkable reports whether an agent may stand on c, ignoring occupancy.
func (g *Grid) Walkable(c Cell) bool {
	return g.InBounds(c) && !g.obstacles[c]
}

// CellOf maps a continuous position to the cell containing it.
func (g *Grid) CellOf(x, y float64) Cell {
	return Cell{
		X: int(math.Floor(x / g.CellSize)),
		Y: int(math.Floor(y / g.CellSize)),
	}
}

// PositionOf returns the continuous center of a cell.
func (g *Grid) PositionOf(c Cell) (x, y float64) {
	return (float64(c.X) + 0.5) * g.CellSize, (float64(c.Y) + 0.5) * g.CellSize
}

// Dist is the Euclidean distance between two cell centers, in cells.
func Dist(a, b Cell) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func Manhattan(a, b Cell) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
