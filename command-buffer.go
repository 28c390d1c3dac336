package prom

import (
	"reflect"

	"github.com/oliverbestmann/prom/world"
	"go.uber.org/zap"
)

type bufferedCommand func(w *world.World, registry *world.Registry, logger *zap.Logger)

// CommandBuffer records changes to the world issued through Commands. They
// are applied in the order they were recorded when the command queue is
// drained at the next tick boundary.
type CommandBuffer struct {
	commands []bufferedCommand
}

func (b *CommandBuffer) Len() int {
	return len(b.commands)
}

func (b *CommandBuffer) push(command bufferedCommand) {
	b.commands = append(b.commands, command)
}

func (b *CommandBuffer) apply(w *world.World, registry *world.Registry, logger *zap.Logger) {
	for _, command := range b.commands {
		command(w, registry, logger)
	}

	clear(b.commands)
	b.commands = b.commands[:0]
}

// Commands injects exclusive access to the CommandBuffer. Nothing recorded
// through it is visible before the next tick boundary.
type Commands struct {
	borrowed
	buffer *CommandBuffer
}

func (c *Commands) init() SystemParamState {
	c.borrowed = borrowed{ty: reflect.TypeFor[CommandBuffer](), access: Write}
	return c
}

func (c *Commands) getValue(sc systemContext) reflect.Value {
	c.buffer = c.acquire(sc.store).Interface().(*CommandBuffer)
	return reflect.ValueOf(c).Elem()
}

func (c *Commands) cleanupValue() {
	c.borrowed.cleanupValue()
	c.buffer = nil
}

func (*Commands) valueType() reflect.Type {
	return reflect.TypeFor[Commands]()
}

func (c Commands) Len() int {
	return c.buffer.Len()
}

// Spawn records the spawn of a new entity with the given components.
func (c Commands) Spawn(components ...world.ErasedComponent) {
	c.buffer.push(func(w *world.World, _ *world.Registry, _ *zap.Logger) {
		w.Spawn(components...)
	})
}

// Insert records adding or replacing components of an entity.
func (c Commands) Insert(entity world.Entity, components ...world.ErasedComponent) {
	c.buffer.push(func(w *world.World, _ *world.Registry, logger *zap.Logger) {
		if !w.Insert(entity, components...) {
			logger.Debug("Can not insert into despawned entity", zap.Stringer("entity", entity))
		}
	})
}

// Despawn records the removal of the entity and its label.
func (c Commands) Despawn(entity world.Entity) {
	c.buffer.push(func(w *world.World, registry *world.Registry, logger *zap.Logger) {
		if !w.Despawn(entity) {
			logger.Debug("Entity already despawned", zap.Stringer("entity", entity))
		}

		registry.RemoveEntity(entity)
	})
}

// RemoveComponent records the removal of the component of type C from the
// entity.
func RemoveComponent[C world.IsComponent[C]](c Commands, entity world.Entity) {
	c.buffer.push(func(w *world.World, _ *world.Registry, _ *zap.Logger) {
		world.Remove[C](w, entity)
	})
}
