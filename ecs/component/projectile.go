package component

import "github.com/go-gl/mathgl/mgl64"

const DefaultProjectileRadius = 25.0

// Projectile is a ballistic sphere. Launchers give each one a TTL. The
// hook may always attach where it hits one.
type Projectile struct {
	Position     mgl64.Vec3
	Velocity     mgl64.Vec3
	Radius       float64
	GravityScale float64
	// Launcher is the entity that fired it, as a raw handle.
	Launcher uint64
}

var ProjectileComponent = NewComponent[Projectile]()

func (p *Projectile) Projectile() {}

// ProjectileLauncher fires a projectile from Origin along Direction every
// Interval seconds.
type ProjectileLauncher struct {
	Name         string
	Origin       mgl64.Vec3
	Direction    mgl64.Vec3
	Speed        float64
	Interval     float64
	TTL          float64
	Radius       float64
	GravityScale float64

	Cooldown float64
	Fired    int
}

var ProjectileLauncherComponent = NewComponent[ProjectileLauncher]()
