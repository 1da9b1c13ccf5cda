package warehouse

import "sort"

// Observation assembly. Every vector has a fixed, pre-declared length
// regardless of how many entities are actually visible; zero padding is
// mandatory for shape stability across episodes.
//
// Per-agent layout:
//
//	self:      norm x, norm y, norm heading, carrying, episode progress  (5)
//	agents:    MaxNearbyAgents x (rel x, rel y, carrying)                (3 each)
//	items:     MaxNearbyItems  x (rel x, rel y, requested)               (3 each)
//	zones:     len(Zones)      x (rel x, rel y, norm delivered)          (3 each)
//
// Global state layout:
//
//	progress, delivered fraction                                          (2)
//	agents: norm x, norm y, carrying                                      (3 each)
//	items:  norm x, norm y, picked up, delivered                          (4 each)
//	zones:  norm x, norm y, norm delivered                                (3 each)

func (e *Env) ObsSize() int {
	return 5 + 3*e.cfg.MaxNearbyAgents + 3*e.cfg.MaxNearbyItems + 3*len(e.zones)
}

func (e *Env) StateSize() int {
	return 2 + 3*len(e.agents) + 4*len(e.items) + 3*len(e.zones)
}

func (e *Env) buildAllObs() [][]float64 {
	obs := make([][]float64, len(e.agents))
	for i, a := range e.agents {
		obs[i] = e.buildObs(a)
	}
	return obs
}

func (e *Env) buildObs(a *Agent) []float64 {
	v := make([]float64, 0, e.ObsSize())

	v = append(v,
		e.normX(a.Cell),
		e.normY(a.Cell),
		float64(a.Heading)/3.0,
		boolFloat(a.IsCarrying()),
		e.progress(),
	)

	// Nearby agents: radius-filtered, nearest first, id tie-break.
	type neighbor struct {
		cell     Cell
		carrying bool
		dist     float64
		id       int
	}
	var near []neighbor
	for _, other := range e.agents {
		if other.ID == a.ID {
			continue
		}
		d := Dist(a.Cell, other.Cell)
		if d > e.cfg.ObsRadius {
			continue
		}
		near = append(near, neighbor{cell: other.Cell, carrying: other.IsCarrying(), dist: d, id: int(other.ID)})
	}
	sort.Slice(near, func(i, j int) bool {
		if near[i].dist != near[j].dist {
			return near[i].dist < near[j].dist
		}
		return near[i].id < near[j].id
	})
	for i := 0; i < e.cfg.MaxNearbyAgents; i++ {
		if i < len(near) {
			v = append(v, e.relX(a.Cell, near[i].cell), e.relY(a.Cell, near[i].cell), boolFloat(near[i].carrying))
		} else {
			v = append(v, 0, 0, 0)
		}
	}

	// Nearby items: anything on the floor within radius; carried items are
	// not separately visible (they travel with their carrier).
	var items []neighbor
	for _, it := range e.items {
		if it.State == ItemCarried {
			continue
		}
		d := Dist(a.Cell, it.Cell)
		if d > e.cfg.ObsRadius {
			continue
		}
		items = append(items, neighbor{cell: it.Cell, carrying: e.queue.IsRequested(it.ID), dist: d, id: it.ID})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].dist != items[j].dist {
			return items[i].dist < items[j].dist
		}
		return items[i].id < items[j].id
	})
	for i := 0; i < e.cfg.MaxNearbyItems; i++ {
		if i < len(items) {
			v = append(v, e.relX(a.Cell, items[i].cell), e.relY(a.Cell, items[i].cell), boolFloat(items[i].carrying))
		} else {
			v = append(v, 0, 0, 0)
		}
	}

	// Delivery zones: fixed count, never padded away.
	for _, z := range e.zones {
		v = append(v, e.relX(a.Cell, z.Cell), e.relY(a.Cell, z.Cell), e.normDelivered(z))
	}
	return v
}

func (e *Env) buildState() []float64 {
	v := make([]float64, 0, e.StateSize())
	v = append(v, e.progress(), e.deliveredFraction())
	for _, a := range e.agents {
		v = append(v, e.normX(a.Cell), e.normY(a.Cell), boolFloat(a.IsCarrying()))
	}
	for i, it := range e.items {
		v = append(v,
			e.normX(it.Cell),
			e.normY(it.Cell),
			boolFloat(it.State == ItemCarried),
			boolFloat(e.deliveredOnce[i]),
		)
	}
	for _, z := range e.zones {
		v = append(v, e.normX(z.Cell), e.normY(z.Cell), e.normDelivered(z))
	}
	return v
}

func (e *Env) progress() float64 {
	return float64(e.stepCount) / float64(e.cfg.MaxSteps)
}

func (e *Env) deliveredFraction() float64 {
	n := 0
	for _, d := range e.deliveredOnce {
		if d {
			n++
		}
	}
	return float64(n) / float64(len(e.items))
}

func (e *Env) normX(c Cell) float64 {
	return (float64(c.X) + 0.5) / float64(e.grid.Width)
}

func (e *Env) normY(c Cell) float64 {
	return (float64(c.Y) + 0.5) / float64(e.grid.Height)
}

// relX/relY are relative offsets scaled by the observation radius, so
// visible entities land in [-1, 1].
func (e *Env) relX(from, to Cell) float64 {
	return float64(to.X-from.X) / e.cfg.ObsRadius
}

func (e *Env) relY(from, to Cell) float64 {
	return float64(to.Y-from.Y) / e.cfg.ObsRadius
}

func (e *Env) normDelivered(z *DeliveryZone) float64 {
	return float64(z.Delivered) / float64(len(e.items))
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
