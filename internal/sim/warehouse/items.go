package warehouse

// ItemState is the item's physical state. Whether an item is currently
// requested is owned by the TaskQueue, not stored here.
type ItemState int

const (
	// ItemAtHome: sitting on its home slot, available for pickup.
	ItemAtHome ItemState = iota
	// ItemCarried: attached to exactly one agent.
	ItemCarried
	// ItemDropped: set down away from home after an off-zone drop.
	ItemDropped
	// ItemReturning: delivered and in transit back to its home slot.
	ItemReturning
)

func (s ItemState) String() string {
	switch s {
	case ItemAtHome:
		return "AT_HOME"
	case ItemCarried:
		return "CARRIED"
	case ItemDropped:
		return "DROPPED"
	case ItemReturning:
		return "RETURNING"
	}
	return "UNKNOWN"
}

// Item is a deliverable package bound to a fixed home slot. Items are
// created once at init and never destroyed; delivery sends them back home.
// Relations are index-based: CarriedBy holds an agent id (or NoAgent),
// agents hold the item index, and neither side stores a pointer.
type Item struct {
	ID        int
	Home      Cell
	Cell      Cell
	State     ItemState
	CarriedBy AgentID

	// Ticks remaining until a returning item is back at its home slot.
	returnTicks int
}

// eligibleForRequest reports whether the task queue may draw this item.
func (it *Item) eligibleForRequest() bool {
	return it.State == ItemAtHome || it.State == ItemDropped
}

// eligibleForPickup reports whether an agent may attach this item.
func (it *Item) eligibleForPickup() bool {
	return it.State == ItemAtHome || it.State == ItemDropped
}

func (it *Item) reset() {
	it.Cell = it.Home
	it.State = ItemAtHome
	it.CarriedBy = NoAgent
	it.returnTicks = 0
}

// DeliveryZone is a drop-off target with a per-episode delivered counter.
type DeliveryZone struct {
	ID        int
	Cell      Cell
	Delivered int
}
