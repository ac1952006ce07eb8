package core

// SurfaceType identifies the surface material a raindrop strikes.
// The audio layer maps it to a timbral configuration.
type SurfaceType string

const (
	SurfaceWater    SurfaceType = "water"
	SurfaceGlass    SurfaceType = "glass"
	SurfaceMetal    SurfaceType = "metal"
	SurfaceWood     SurfaceType = "wood"
	SurfaceConcrete SurfaceType = "concrete"
	SurfaceLeaves   SurfaceType = "leaves"
)

// Vec2 is a 2D position in screen-space millimeters
type Vec2 struct {
	X float64
	Y float64
}

// CollisionEvent describes a single raindrop impact produced by the
// physics simulation. Consumed once, never retained.
type CollisionEvent struct {
	DropRadius  float64 // mm, > 0
	Velocity    float64 // m/s, >= 0
	Mass        float64 // kg
	SurfaceType SurfaceType
	Position    Vec2
	ImpactAngle float64 // radians from vertical
}
