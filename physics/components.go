package physics

import (
	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/prom/world"
)

// Position is the world position of an entity. Entities with a Body are
// moved by the simulation, changes to Position teleport the body.
type Position struct {
	world.Component[Position]
	cp.Vector
}

type Velocity struct {
	world.Component[Velocity]
	cp.Vector
}

// Body adds an entity to the simulation. It requires a Position.
// The body is created the first time the entity is synced, later
// changes to the Body component are not applied.
type Body struct {
	world.Component[Body]

	Shape Shape

	// Mass of a dynamic body, defaults to 1
	Mass float64

	Elasticity float64
	Friction   float64

	// Static bodies never move, their Position is only read once.
	Static bool
}

func DynamicBody(shape Shape, mass float64) Body {
	return Body{Shape: shape, Mass: mass, Friction: 0.5}
}

func StaticBody(shape Shape) Body {
	return Body{Shape: shape, Static: true, Friction: 0.5}
}
