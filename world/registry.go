package world

import (
	"iter"
	"maps"
	"slices"
)

// Registry maps labels to entities and back. Both directions are injective:
// a label names at most one entity and an entity carries at most one label.
// The zero value is ready to use.
type Registry struct {
	byLabel  map[string]Entity
	byEntity map[Entity]string
}

// Insert pairs entity with label. Any previous pairing of either side is
// dropped and returned: replacedLabel is the label the entity had before,
// replacedEntity the entity that previously carried the label.
func (r *Registry) Insert(entity Entity, label string) (replacedLabel string, replacedEntity Entity) {
	if r.byLabel == nil {
		r.byLabel = map[string]Entity{}
		r.byEntity = map[Entity]string{}
	}

	if prev, ok := r.byEntity[entity]; ok && prev != label {
		delete(r.byLabel, prev)
		replacedLabel = prev
	}

	if prev, ok := r.byLabel[label]; ok && prev != entity {
		delete(r.byEntity, prev)
		replacedEntity = prev
	}

	r.byLabel[label] = entity
	r.byEntity[entity] = label

	return replacedLabel, replacedEntity
}

func (r *Registry) Lookup(label string) (Entity, bool) {
	entity, ok := r.byLabel[label]
	return entity, ok
}

func (r *Registry) LabelOf(entity Entity) (string, bool) {
	label, ok := r.byEntity[entity]
	return label, ok
}

// RemoveEntity drops the entity and its label.
func (r *Registry) RemoveEntity(entity Entity) bool {
	label, ok := r.byEntity[entity]
	if !ok {
		return false
	}

	delete(r.byEntity, entity)
	delete(r.byLabel, label)
	return true
}

// RemoveLabel drops the label and the entity it names.
func (r *Registry) RemoveLabel(label string) bool {
	entity, ok := r.byLabel[label]
	if !ok {
		return false
	}

	delete(r.byLabel, label)
	delete(r.byEntity, entity)
	return true
}

func (r *Registry) Len() int {
	return len(r.byLabel)
}

// All yields all pairs ordered by label.
func (r *Registry) All() iter.Seq2[string, Entity] {
	return func(yield func(string, Entity) bool) {
		for _, label := range slices.Sorted(maps.Keys(r.byLabel)) {
			if !yield(label, r.byLabel[label]) {
				return
			}
		}
	}
}
