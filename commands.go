package prom

import (
	"iter"
	"reflect"

	"github.com/oliverbestmann/prom/world"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type CommandKind uint8

const (
	// CommandSpawn records an entity spawned through WriteWorld. The entity
	// already exists when the command is queued.
	CommandSpawn CommandKind = iota

	// CommandDespawn removes the entity from the world and the registry
	// when the queue is drained.
	CommandDespawn
)

func (k CommandKind) String() string {
	switch k {
	case CommandSpawn:
		return "spawn"
	case CommandDespawn:
		return "despawn"
	default:
		return "unknown"
	}
}

type Command struct {
	Kind   CommandKind
	Entity world.Entity

	// Label is only set for labeled spawns.
	Label string
}

// CommandQueue collects the commands issued through WriteWorld until they
// are drained at the tick boundary.
type CommandQueue struct {
	commands []Command
}

func (q *CommandQueue) Push(command Command) {
	q.commands = append(q.commands, command)
}

func (q *CommandQueue) Len() int {
	return len(q.commands)
}

// All yields the queued commands in the order they were issued.
func (q *CommandQueue) All() iter.Seq[Command] {
	return func(yield func(Command) bool) {
		for _, command := range q.commands {
			if !yield(command) {
				return
			}
		}
	}
}

// pop removes the most recently issued command.
func (q *CommandQueue) pop() (Command, bool) {
	n := len(q.commands)
	if n == 0 {
		return Command{}, false
	}

	command := q.commands[n-1]
	q.commands = q.commands[:n-1]
	return command, true
}

// apply drains the queue, most recent command first.
func (q *CommandQueue) apply(w *world.World, registry *world.Registry, logger *zap.Logger) {
	for {
		command, ok := q.pop()
		if !ok {
			return
		}

		switch command.Kind {
		case CommandSpawn:
			// the entity was spawned when the command was issued

		case CommandDespawn:
			if !w.Despawn(command.Entity) {
				logger.Debug("Entity already despawned",
					zap.Stringer("entity", command.Entity))
			}

			registry.RemoveEntity(command.Entity)
		}
	}
}

// drainCommands applies the command queue against the world and registry in
// the store, followed by the CommandBuffer if there is one. The cells are
// borrowed for writing while the commands are applied.
func drainCommands(store *Store, logger *zap.Logger) error {
	worldType := reflect.TypeFor[world.World]()
	registryType := reflect.TypeFor[world.Registry]()
	queueType := reflect.TypeFor[CommandQueue]()

	for _, ty := range []reflect.Type{worldType, registryType, queueType} {
		if !store.Contains(ty) {
			return errors.Wrapf(ErrBookkeepingResourceMissing, "drain command queue: no %s", ty)
		}
	}

	w, _ := store.borrow(worldType, Write)
	defer store.release(worldType, Write)

	registry, _ := store.borrow(registryType, Write)
	defer store.release(registryType, Write)

	queue, _ := store.borrow(queueType, Write)
	defer store.release(queueType, Write)

	queue.Interface().(*CommandQueue).apply(
		w.Interface().(*world.World),
		registry.Interface().(*world.Registry),
		logger,
	)

	bufferType := reflect.TypeFor[CommandBuffer]()
	if !store.Contains(bufferType) {
		return nil
	}

	buffer, _ := store.borrow(bufferType, Write)
	defer store.release(bufferType, Write)

	buffer.Interface().(*CommandBuffer).apply(
		w.Interface().(*world.World),
		registry.Interface().(*world.Registry),
		logger,
	)

	return nil
}
