package world

import (
	"fmt"
	"iter"
	"slices"
)

// World stores entities and their components. The zero value is ready to use.
//
// A World must not be modified while a query over it is being iterated.
type World struct {
	entities entityPool

	columns map[*ComponentType]column

	// components attached to each entity, used on despawn
	attached map[Entity][]*ComponentType

	activeQueries int
}

func (w *World) init() {
	if w.columns == nil {
		w.columns = map[*ComponentType]column{}
		w.attached = map[Entity][]*ComponentType{}
	}
}

// Spawn allocates a new entity holding the given components.
func (w *World) Spawn(components ...ErasedComponent) Entity {
	w.assertNoQueries("spawn")
	w.init()

	entity := w.entities.allocate()
	w.attached[entity] = nil

	for _, component := range components {
		w.insert(entity, component)
	}

	return entity
}

// Insert attaches the components to the entity, replacing existing values
// of the same type. It returns false if the entity is not alive.
func (w *World) Insert(entity Entity, components ...ErasedComponent) bool {
	w.assertNoQueries("insert components")

	if !w.Contains(entity) {
		return false
	}

	for _, component := range components {
		w.insert(entity, component)
	}

	return true
}

func (w *World) insert(entity Entity, component ErasedComponent) {
	if component == nil {
		panic(fmt.Sprintf("nil component for entity %s", entity))
	}

	componentType := component.ComponentType()

	col := w.columnOf(componentType)
	if !col.contains(entity) {
		w.attached[entity] = append(w.attached[entity], componentType)
	}

	col.insert(entity, component)
}

// Despawn removes the entity and all of its components. It returns false
// if the entity was not alive.
func (w *World) Despawn(entity Entity) bool {
	w.assertNoQueries("despawn")

	if !w.entities.release(entity) {
		return false
	}

	for _, componentType := range w.attached[entity] {
		w.columns[componentType].remove(entity)
	}

	delete(w.attached, entity)
	return true
}

func (w *World) Contains(entity Entity) bool {
	return w.entities.contains(entity)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.alive
}

// Entities yields all live entities in ascending slot order.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		entities := make([]Entity, 0, len(w.attached))
		for entity := range w.attached {
			entities = append(entities, entity)
		}

		slices.SortFunc(entities, func(a, b Entity) int {
			return int(a.Index()) - int(b.Index())
		})

		w.activeQueries += 1
		defer func() { w.activeQueries -= 1 }()

		for _, entity := range entities {
			if !yield(entity) {
				return
			}
		}
	}
}

// ComponentTypes returns the types of the components attached to the entity.
func (w *World) ComponentTypes(entity Entity) []*ComponentType {
	return slices.Clone(w.attached[entity])
}

func (w *World) columnOf(componentType *ComponentType) column {
	w.init()

	col, ok := w.columns[componentType]
	if !ok {
		col = componentType.newColumn()
		w.columns[componentType] = col
	}

	return col
}

func (w *World) assertNoQueries(op string) {
	if w.activeQueries > 0 {
		panic(fmt.Sprintf("can not %s while a query is active", op))
	}
}

func typedColumnOf[C IsComponent[C]](w *World) *typedColumn[C] {
	if w.columns == nil {
		return nil
	}

	col, ok := w.columns[ComponentTypeOf[C]()]
	if !ok {
		return nil
	}

	return col.(*typedColumn[C])
}

// Remove detaches the component of type C from the entity.
func Remove[C IsComponent[C]](target Writer, entity Entity) bool {
	w := target.target()
	w.assertNoQueries("remove component")

	col := typedColumnOf[C](w)
	if col == nil || !col.remove(entity) {
		return false
	}

	componentType := ComponentTypeOf[C]()
	w.attached[entity] = slices.DeleteFunc(w.attached[entity], func(ty *ComponentType) bool {
		return ty == componentType
	})

	return true
}

// Get returns a pointer to the component of type C of the entity.
// The pointer is valid until the next structural change to the World.
func Get[C IsComponent[C]](r Reader, entity Entity) (*C, bool) {
	col := typedColumnOf[C](r.source())
	if col == nil {
		return nil, false
	}

	return col.get(entity)
}

func Has[C IsComponent[C]](r Reader, entity Entity) bool {
	col := typedColumnOf[C](r.source())
	return col != nil && col.contains(entity)
}
