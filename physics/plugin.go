package physics

import (
	"time"

	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/prom"
	"github.com/oliverbestmann/prom/internal/set"
	"github.com/oliverbestmann/prom/world"
)

var (
	// SyncPhase copies bodies from the world into the space.
	SyncPhase = prom.PhaseTick.Offset(0.4)

	// StepPhase advances the simulation.
	StepPhase = prom.PhaseTick.Offset(0.5)

	// WriteBackPhase copies the simulation results back into the world
	// and sends Contact events.
	WriteBackPhase = prom.PhaseTick.Offset(0.6)
)

type Gravity struct {
	cp.Vector
}

type Stepping struct {
	// Substeps per tick, at least one
	Substeps int

	// Delta is the time simulated per tick if no prom.Clock is present
	Delta time.Duration
}

// Space is the resource owning the simulation. It keeps track of the body
// created for each entity.
type Space struct {
	space  *cp.Space
	bodies map[world.Entity]*cp.Body
}

func NewSpace() Space {
	return Space{
		space:  cp.NewSpace(),
		bodies: map[world.Entity]*cp.Body{},
	}
}

func (s *Space) Space() *cp.Space {
	return s.space
}

// Len returns the number of bodies in the simulation.
func (s *Space) Len() int {
	return len(s.bodies)
}

func (s *Space) BodyOf(entity world.Entity) (*cp.Body, bool) {
	body, ok := s.bodies[entity]
	return body, ok
}

func (s *Space) add(entity world.Entity, def *Body, position cp.Vector) *cp.Body {
	var body *cp.Body

	if def.Static {
		body = cp.NewStaticBody()
	} else {
		mass := def.Mass
		if mass <= 0 {
			mass = 1
		}

		body = cp.NewBody(mass, def.Shape.moment(mass))
	}

	// static shapes are indexed once, the body must be in place before
	body.SetPosition(position)
	body.UserData = entity
	s.space.AddBody(body)

	shape := s.space.AddShape(def.Shape.makeShape(body))
	shape.SetElasticity(def.Elasticity)
	shape.SetFriction(def.Friction)

	s.bodies[entity] = body

	return body
}

func (s *Space) remove(entity world.Entity) {
	body, ok := s.bodies[entity]
	if !ok {
		return
	}

	var shapes []*cp.Shape
	body.EachShape(func(shape *cp.Shape) {
		shapes = append(shapes, shape)
	})

	for _, shape := range shapes {
		s.space.RemoveShape(shape)
	}

	s.space.RemoveBody(body)
	delete(s.bodies, entity)
}

// Plugin simulates every entity with a Body and a Position.
type Plugin struct {
	Gravity  cp.Vector
	Substeps int
}

func (p Plugin) ApplyTo(app *prom.App) {
	app.InsertResource(NewSpace())
	app.InsertResource(Gravity{Vector: p.Gravity})
	app.InsertResource(Stepping{
		Substeps: max(1, p.Substeps),
		Delta:    time.Second / 60,
	})

	app.RegisterEvent(prom.EventType[Contact]())

	app.InsertSystem(SyncPhase, syncBodiesSystem)
	app.InsertSystem(StepPhase, stepSpaceSystem)
	app.InsertSystem(WriteBackPhase, writeBackSystem)
}

func syncBodiesSystem(w prom.MutWorld, res prom.ResMut[Space], gravity prom.Res[Gravity]) {
	space := res.Get()
	space.space.SetGravity(gravity.Get().Vector)

	var seen set.Set[world.Entity]

	for item := range world.Query2[Body, Position](w.World()) {
		seen.Insert(item.Entity)

		body, ok := space.bodies[item.Entity]
		if !ok {
			body = space.add(item.Entity, item.First, item.Second.Vector)
		}

		if item.First.Static {
			continue
		}

		if body.Position() != item.Second.Vector {
			body.SetPosition(item.Second.Vector)
		}

		if velocity, ok := world.Get[Velocity](w.World(), item.Entity); ok {
			body.SetVelocityVector(velocity.Vector)
		}
	}

	// drop bodies of despawned entities
	for entity := range space.bodies {
		if !seen.Has(entity) {
			space.remove(entity)
		}
	}
}

func stepSpaceSystem(res prom.ResMut[Space], stepping prom.Res[Stepping], clock prom.ResOption[prom.Clock]) {
	dt := stepping.Get().Delta.Seconds()
	if clock.Value != nil && clock.Value.DeltaSecs > 0 {
		dt = clock.Value.DeltaSecs
	}

	substeps := max(1, stepping.Get().Substeps)
	for range substeps {
		res.Get().space.Step(dt / float64(substeps))
	}
}

func writeBackSystem(w prom.MutWorld, res prom.Res[Space], contacts prom.EventWriter[Contact]) {
	space := res.Get()

	var seen set.Set[*cp.Arbiter]

	for item := range world.Query2[Body, Position](w.World()) {
		body, ok := space.bodies[item.Entity]
		if !ok {
			continue
		}

		item.Second.Vector = body.Position()

		if velocity, ok := world.Get[Velocity](w.World(), item.Entity); ok {
			velocity.Vector = body.Velocity()
		}

		body.EachArbiter(func(arb *cp.Arbiter) {
			if !seen.Insert(arb) {
				return
			}

			a, b := arb.Bodies()

			entityA, okA := a.UserData.(world.Entity)
			entityB, okB := b.UserData.(world.Entity)
			if !okA || !okB {
				return
			}

			contacts.Send(Contact{A: entityA, B: entityB, Normal: arb.Normal()})
		})
	}
}
