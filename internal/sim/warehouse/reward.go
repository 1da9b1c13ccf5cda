package warehouse

// rewardAssigner turns the tick's event list and movement progress into
// per-agent reward deltas. Components sum independently; nothing here is
// mutually exclusive. No discounting happens in the kernel.
type rewardAssigner struct {
	cfg RewardConfig
}

// shaping returns the progress component for one agent: proportional to
// the reduction in distance to the goal fixed at tick start, capped, and
// zero when the distance did not decrease. Teleport-like deltas are
// clamped by the cap rather than rejected.
func (r *rewardAssigner) shaping(prevDist, curDist float64) float64 {
	gain := prevDist - curDist
	if gain <= 0 {
		return 0
	}
	s := gain * r.cfg.ShapingScale
	if s > r.cfg.ShapingCap {
		s = r.cfg.ShapingCap
	}
	return s
}

// assign applies event rewards into the per-agent vector.
func (r *rewardAssigner) assign(rewards []float64, events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case EventPickup:
			rewards[ev.Agent] += r.cfg.Pickup
		case EventDelivery:
			rewards[ev.Agent] += r.cfg.Delivery
			for i := range rewards {
				if AgentID(i) != ev.Agent {
					rewards[i] += r.cfg.TeamDelivery
				}
			}
		case EventDrop:
			rewards[ev.Agent] += r.cfg.OffZoneDrop
		case EventCollision:
			rewards[ev.Agent] += r.cfg.Collision
		case EventComplete:
			for i := range rewards {
				rewards[i] += r.cfg.Completion
			}
		}
	}
}
