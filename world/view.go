package world

import "iter"

// Reader is anything queries and lookups can run against.
type Reader interface {
	source() *World
}

// Writer additionally allows to change components of existing entities.
type Writer interface {
	Reader
	target() *World
}

func (w *World) source() *World { return w }
func (w *World) target() *World { return w }

// View is a read only handle to a World. Use it with Get, Has and the
// Query functions.
type View struct {
	w *World
}

// View returns a read only handle to the world.
func (w *World) View() View {
	return View{w: w}
}

func (v View) source() *World {
	return v.w
}

func (v View) Contains(entity Entity) bool {
	return v.w.Contains(entity)
}

func (v View) Len() int {
	return v.w.Len()
}

func (v View) Entities() iter.Seq[Entity] {
	return v.w.Entities()
}

func (v View) ComponentTypes(entity Entity) []*ComponentType {
	return v.w.ComponentTypes(entity)
}

// MutView allows to insert and remove components of existing entities.
// Entities can neither be spawned nor despawned through it.
type MutView struct {
	View
}

// MutView returns a handle to the world that can modify components.
func (w *World) MutView() MutView {
	return MutView{View: View{w: w}}
}

func (m MutView) target() *World {
	return m.w
}

// Insert adds or replaces components of an existing entity.
func (m MutView) Insert(entity Entity, components ...ErasedComponent) bool {
	return m.w.Insert(entity, components...)
}
