package prom

import (
	"iter"
	"reflect"

	"github.com/oliverbestmann/prom/world"
	"go.uber.org/zap"
)

// RefWorld injects shared, read only access to the world.World resource.
type RefWorld struct {
	borrowed
	world *world.World
}

func (r *RefWorld) init() SystemParamState {
	r.borrowed = borrowed{ty: reflect.TypeFor[world.World](), access: Read}
	return r
}

func (r *RefWorld) getValue(sc systemContext) reflect.Value {
	r.world = r.acquire(sc.store).Interface().(*world.World)
	return reflect.ValueOf(r).Elem()
}

func (r *RefWorld) cleanupValue() {
	r.borrowed.cleanupValue()
	r.world = nil
}

func (*RefWorld) valueType() reflect.Type {
	return reflect.TypeFor[RefWorld]()
}

// World returns a read only view for queries and lookups.
func (r RefWorld) World() world.View {
	return r.world.View()
}

// MutWorld injects exclusive access to the components of the world.World
// resource. Entities are spawned and despawned through WriteWorld only, so
// the label registry never points at a dead entity.
type MutWorld struct {
	borrowed
	world *world.World
}

func (m *MutWorld) init() SystemParamState {
	m.borrowed = borrowed{ty: reflect.TypeFor[world.World](), access: Write}
	return m
}

func (m *MutWorld) getValue(sc systemContext) reflect.Value {
	m.world = m.acquire(sc.store).Interface().(*world.World)
	return reflect.ValueOf(m).Elem()
}

func (m *MutWorld) cleanupValue() {
	m.borrowed.cleanupValue()
	m.world = nil
}

func (*MutWorld) valueType() reflect.Type {
	return reflect.TypeFor[MutWorld]()
}

// World returns a view that can insert and remove components.
func (m MutWorld) World() world.MutView {
	return m.world.MutView()
}

// WriteWorld injects exclusive access to the world, the registry and the
// command queue. Entities are spawned immediately and their labels are
// visible to later systems of the same tick. Despawns are deferred to the
// next tick boundary.
type WriteWorld struct {
	world    borrowed
	registry borrowed
	commands borrowed

	logger *zap.Logger

	w *world.World
	r *world.Registry
	q *CommandQueue
}

func (ww *WriteWorld) init() SystemParamState {
	ww.world = borrowed{ty: reflect.TypeFor[world.World](), access: Write}
	ww.registry = borrowed{ty: reflect.TypeFor[world.Registry](), access: Write}
	ww.commands = borrowed{ty: reflect.TypeFor[CommandQueue](), access: Write}
	return ww
}

func (ww *WriteWorld) declareAccess(tracker *AccessTracker) error {
	if err := ww.world.declareAccess(tracker); err != nil {
		return err
	}

	if err := ww.registry.declareAccess(tracker); err != nil {
		return err
	}

	return ww.commands.declareAccess(tracker)
}

func (ww *WriteWorld) getValue(sc systemContext) reflect.Value {
	ww.w = ww.world.acquire(sc.store).Interface().(*world.World)
	ww.r = ww.registry.acquire(sc.store).Interface().(*world.Registry)
	ww.q = ww.commands.acquire(sc.store).Interface().(*CommandQueue)
	ww.logger = sc.logger

	return reflect.ValueOf(ww).Elem()
}

func (ww *WriteWorld) cleanupValue() {
	ww.commands.cleanupValue()
	ww.registry.cleanupValue()
	ww.world.cleanupValue()

	ww.w, ww.r, ww.q = nil, nil, nil
}

func (*WriteWorld) valueType() reflect.Type {
	return reflect.TypeFor[WriteWorld]()
}

// World returns a view that can insert and remove components. Use Spawn,
// SpawnLabeled and DeferDespawn to change the set of entities.
func (ww WriteWorld) World() world.MutView {
	return ww.w.MutView()
}

// Spawn spawns a new entity and records the spawn in the command queue.
func (ww WriteWorld) Spawn(components ...world.ErasedComponent) world.Entity {
	entity := ww.w.Spawn(components...)
	ww.q.Push(Command{Kind: CommandSpawn, Entity: entity})
	return entity
}

// SpawnLabeled spawns a new entity and registers it under label. A previous
// owner of the label loses it.
func (ww WriteWorld) SpawnLabeled(label string, components ...world.ErasedComponent) world.Entity {
	entity := ww.w.Spawn(components...)
	ww.q.Push(Command{Kind: CommandSpawn, Entity: entity, Label: label})

	// a fresh entity carries no label, only the label side can be displaced
	if _, replaced := ww.r.Insert(entity, label); replaced != world.NoEntity {
		ww.logger.Warn("Label moved to a new entity",
			zap.String("label", label),
			zap.Stringer("previous", replaced),
			zap.Stringer("entity", entity))
	}

	return entity
}

// DeferDespawn queues the entity for removal at the next tick boundary.
func (ww WriteWorld) DeferDespawn(entity world.Entity) {
	ww.q.Push(Command{Kind: CommandDespawn, Entity: entity})
}

func (ww WriteWorld) Lookup(label string) (world.Entity, bool) {
	return ww.r.Lookup(label)
}

func (ww WriteWorld) LabelOf(entity world.Entity) (string, bool) {
	return ww.r.LabelOf(entity)
}

// History yields the commands issued since the last drain.
func (ww WriteWorld) History() iter.Seq[Command] {
	return ww.q.All()
}

func (ww WriteWorld) QueueLen() int {
	return ww.q.Len()
}
