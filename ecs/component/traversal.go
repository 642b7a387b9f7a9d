package component

import "github.com/milk9111/temporaldash/traversal"

type Traversal struct {
	Controller *traversal.Controller
	// Last is the modifier seen at the end of the previous tick.
	Last traversal.Modifier
}

var TraversalComponent = NewComponent[Traversal]()
