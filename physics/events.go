package physics

import (
	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/prom/world"
)

// Contact is sent for every pair of bodies touching after a step.
type Contact struct {
	A, B   world.Entity
	Normal cp.Vector
}
