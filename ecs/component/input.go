package component

import "github.com/milk9111/temporaldash/traversal"

// Input stores the traversal intent gathered for an entity this tick. Move
// persists between ticks, while Look and the button edges are cleared once
// the controller has consumed them.
type Input struct {
	Intent traversal.Input
}

// Consume returns the pending intent and clears everything but Move.
func (in *Input) Consume() traversal.Input {
	if in == nil {
		return traversal.Input{}
	}
	out := in.Intent
	in.Intent = traversal.Input{Move: out.Move}
	return out
}

var InputComponent = NewComponent[Input]()
