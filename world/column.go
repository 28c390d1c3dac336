package world

import "fmt"

type column interface {
	// insert adds or replaces the value of the entity
	insert(entity Entity, component ErasedComponent)
	remove(entity Entity) bool
	contains(entity Entity) bool
	len() int
}

// typedColumn stores values densely. Removal swaps the last row into
// the hole, so row order is not stable across removals.
type typedColumn[C any] struct {
	entities []Entity
	values   []C
	rows     map[Entity]int
}

func (c *typedColumn[C]) insert(entity Entity, component ErasedComponent) {
	value, ok := component.(C)
	if !ok {
		panic(fmt.Sprintf("expected component of type %T, got %T", *new(C), component))
	}

	if row, ok := c.rows[entity]; ok {
		c.values[row] = value
		return
	}

	c.rows[entity] = len(c.values)
	c.entities = append(c.entities, entity)
	c.values = append(c.values, value)
}

func (c *typedColumn[C]) remove(entity Entity) bool {
	row, ok := c.rows[entity]
	if !ok {
		return false
	}

	last := len(c.values) - 1
	if row != last {
		c.values[row] = c.values[last]
		c.entities[row] = c.entities[last]
		c.rows[c.entities[row]] = row
	}

	var zero C
	c.values[last] = zero
	c.values = c.values[:last]
	c.entities = c.entities[:last]

	delete(c.rows, entity)
	return true
}

func (c *typedColumn[C]) contains(entity Entity) bool {
	_, ok := c.rows[entity]
	return ok
}

func (c *typedColumn[C]) get(entity Entity) (*C, bool) {
	row, ok := c.rows[entity]
	if !ok {
		return nil, false
	}

	return &c.values[row], true
}

func (c *typedColumn[C]) len() int {
	return len(c.values)
}
