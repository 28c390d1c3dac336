package physics

import (
	"github.com/jakecoffman/cp/v2"
)

// Shape describes the collider of a Body.
type Shape interface {
	moment(mass float64) float64
	makeShape(body *cp.Body) *cp.Shape
}

type Circle struct {
	Radius float64
}

func (s Circle) moment(mass float64) float64 {
	return cp.MomentForCircle(mass, 0, s.Radius, cp.Vector{})
}

func (s Circle) makeShape(body *cp.Body) *cp.Shape {
	return cp.NewCircle(body, s.Radius, cp.Vector{})
}

// Segment is a line from A to B, thickened by Radius.
type Segment struct {
	A, B   cp.Vector
	Radius float64
}

func (s Segment) moment(mass float64) float64 {
	return cp.MomentForSegment(mass, s.A, s.B, s.Radius)
}

func (s Segment) makeShape(body *cp.Body) *cp.Shape {
	return cp.NewSegment(body, s.A, s.B, s.Radius)
}

// Box is centered on the body.
type Box struct {
	Width, Height float64
	Radius        float64
}

func (s Box) moment(mass float64) float64 {
	return cp.MomentForBox(mass, s.Width, s.Height)
}

func (s Box) makeShape(body *cp.Body) *cp.Shape {
	return cp.NewBox(body, s.Width, s.Height, s.Radius)
}
