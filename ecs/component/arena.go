package component

import (
	"github.com/milk9111/temporaldash/arena"
	"github.com/milk9111/temporaldash/traversal"
)

// Arena holds the static level geometry and the default movement constants
// the kinematics step applies. One arena entity exists per world.
type Arena struct {
	Name   string
	World  *arena.World
	Params arena.MoveParams
	Spawn  arena.Spawn
}

var ArenaComponent = NewComponent[Arena]()

// Timers is the task queue shared by every controller in a world. It is
// advanced once per tick before any controller updates.
type Timers struct {
	Queue *traversal.TaskQueue
}

var TimersComponent = NewComponent[Timers]()
