package component

import "github.com/milk9111/temporaldash/arena"

// BodyComponent stores the kinematic character body. The stored *arena.Body
// is handed to the traversal controller as its Integrator, so the pointer
// must stay attached for the life of the entity.
var BodyComponent = NewComponent[arena.Body]()
