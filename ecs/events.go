package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const (
	EventLanded          = "landed"
	EventWallEnter       = "wall_enter"
	EventWallExit        = "wall_exit"
	EventModifierChanged = "modifier_changed"
	EventProjectileFired = "projectile_fired"
	EventProjectileGone  = "projectile_gone"
)

// BodyEvent is emitted for events about a single body, such as landing.
type BodyEvent struct {
	Entity Entity
}

// WallEvent is emitted when a body enters or leaves a wall volume.
type WallEvent struct {
	Entity Entity
	Wall   Entity
}

// ModifierEvent is emitted when a traversal controller switches its active
// modifier.
type ModifierEvent struct {
	Entity Entity
	From   string
	To     string
}

// ProjectileEvent is emitted when a launcher fires or a projectile expires.
type ProjectileEvent struct {
	Projectile Entity
	Launcher   Entity
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Pending returns the queued events without clearing them. Systems that
// only observe events use this so later systems still see them.
func (q *EventQueue) Pending() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	return append([]Event(nil), q.items...)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
