package entity

import (
	"github.com/milk9111/temporaldash/ecs"
)

const PlayerPrefab = "player.yaml"

// NewPlayer builds the player prefab. Build the arena first so the player
// starts at its spawn and shares its timers.
func NewPlayer(w *ecs.World, opts ...BuildOption) (ecs.Entity, error) {
	return BuildEntity(w, PlayerPrefab, opts...)
}
