package world

import (
	"fmt"
	"reflect"
	"sync"
)

// ErasedComponent is any value that can be attached to an entity.
type ErasedComponent interface {
	ComponentType() *ComponentType
}

type IsComponent[C any] interface {
	ErasedComponent
	isComponent(C)
}

// Component must be embedded into a struct to turn it into a component:
//
//	type Position struct {
//		world.Component[Position]
//		X, Y float64
//	}
type Component[C IsComponent[C]] struct{}

func (Component[C]) isComponent(C) {}

func (Component[C]) ComponentType() *ComponentType {
	return ComponentTypeOf[C]()
}

type ComponentType struct {
	Id   int
	Name string
	Type reflect.Type

	newColumn func() column
}

func (c *ComponentType) String() string {
	return c.Name
}

var componentTypes = struct {
	sync.Mutex
	byType map[reflect.Type]*ComponentType
}{
	byType: map[reflect.Type]*ComponentType{},
}

func ComponentTypeOf[C IsComponent[C]]() *ComponentType {
	ty := reflect.TypeFor[C]()

	componentTypes.Lock()
	defer componentTypes.Unlock()

	componentType, ok := componentTypes.byType[ty]
	if !ok {
		if ty.Kind() != reflect.Struct {
			panic(fmt.Sprintf("component %s must be a struct", ty))
		}

		componentType = &ComponentType{
			Id:   len(componentTypes.byType) + 1,
			Name: ty.String(),
			Type: ty,

			newColumn: func() column {
				return &typedColumn[C]{rows: map[Entity]int{}}
			},
		}

		componentTypes.byType[ty] = componentType
	}

	return componentType
}
