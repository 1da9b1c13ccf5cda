package warehouse

// moveProposal is one agent's requested cell transition for the tick.
type moveProposal struct {
	Agent AgentID
	From  Cell
	To    Cell
}

// resolveMoves arbitrates all proposed transitions for one tick.
//
// Proposals are processed in ascending agent id against the occupancy map
// as mutated so far this tick: first-come-first-served with id order as
// the tie-break. Two agents targeting the same empty cell resolve to the
// lower id winning; swap conflicts (A<->B) reject both, because the lower
// id's destination is still occupied when it is evaluated and no cycle
// detection runs beyond this single greedy pass. The caller must pass
// proposals already sorted by agent id.
//
// Returns the verdict per proposal, parallel to the input.
func resolveMoves(occ *Occupancy, proposals []moveProposal) []MoveVerdict {
	verdicts := make([]MoveVerdict, len(proposals))
	for i, p := range proposals {
		verdicts[i] = occ.Move(p.Agent, p.From, p.To)
	}
	return verdicts
}
