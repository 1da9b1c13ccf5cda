package warehouse

import "fmt"

// primitive is the internal action vocabulary every variant maps onto.
type primitive int

const (
	primNoop primitive = iota
	primForward
	primBackward
	primTurnLeft
	primTurnRight
	primPickupOrDrop
)

// Variant selects the discrete action set exposed to the learner.
type Variant string

const (
	// VariantSix: {Noop, MoveForward, MoveBackward, TurnLeft, TurnRight, PickupOrDrop}.
	VariantSix Variant = "six"
	// VariantFive: {TurnLeft, TurnRight, Forward, LoadUnload, Noop} (RWARE ordering).
	VariantFive Variant = "five"
)

// Six-action indices, exported for scripted drivers and tests.
const (
	ActNoop = iota
	ActMoveForward
	ActMoveBackward
	ActTurnLeft
	ActTurnRight
	ActPickupOrDrop
)

var sixActionSet = []primitive{
	primNoop,
	primForward,
	primBackward,
	primTurnLeft,
	primTurnRight,
	primPickupOrDrop,
}

var fiveActionSet = []primitive{
	primTurnLeft,
	primTurnRight,
	primForward,
	primPickupOrDrop,
	primNoop,
}

func actionSet(v Variant) ([]primitive, error) {
	switch v {
	case VariantSix, "":
		return sixActionSet, nil
	case VariantFive:
		return fiveActionSet, nil
	}
	return nil, fmt.Errorf("unknown action variant %q", v)
}
