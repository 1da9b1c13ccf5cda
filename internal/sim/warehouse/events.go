package warehouse

// EventKind enumerates the per-tick reward-relevant events.
type EventKind string

const (
	EventPickup    EventKind = "PICKUP"
	EventDelivery  EventKind = "DELIVERY"
	EventDrop      EventKind = "DROP" // off-zone drop, no credit
	EventCollision EventKind = "COLLISION"
	EventComplete  EventKind = "COMPLETE" // pool fully delivered
)

// Event is one reward-relevant occurrence within a tick. Item and Zone
// are indices into the env arenas, -1 when not applicable.
type Event struct {
	Kind  EventKind `json:"kind"`
	Agent AgentID   `json:"agent"`
	Item  int       `json:"item,omitempty"`
	Zone  int       `json:"zone,omitempty"`
}

// TickLogEntry is one tick's record for the persistence layer: the joint
// action, the reward vector and the post-tick state digest.
type TickLogEntry struct {
	Episode int       `json:"episode"`
	Step    int       `json:"step"`
	Tick    uint64    `json:"tick"`
	Actions []int     `json:"actions"`
	Rewards []float64 `json:"rewards"`
	Events  []Event   `json:"events,omitempty"`
	Done    bool      `json:"done,omitempty"`
	Digest  string    `json:"digest"`
}

// TickLogger receives one entry per step. Implemented in
// internal/persistence; a nil logger disables recording.
type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}
