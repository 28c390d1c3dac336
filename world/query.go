package world

import "iter"

// Query yields every entity that has a component of type C.
func Query[C IsComponent[C]](r Reader) iter.Seq2[Entity, *C] {
	w := r.source()

	return func(yield func(Entity, *C) bool) {
		col := typedColumnOf[C](w)
		if col == nil {
			return
		}

		w.activeQueries += 1
		defer func() { w.activeQueries -= 1 }()

		for row, entity := range col.entities {
			if !yield(entity, &col.values[row]) {
				return
			}
		}
	}
}

type Item2[A, B any] struct {
	Entity Entity
	First  *A
	Second *B
}

// Query2 yields every entity that has both an A and a B component.
func Query2[A IsComponent[A], B IsComponent[B]](r Reader) iter.Seq[Item2[A, B]] {
	w := r.source()

	return func(yield func(Item2[A, B]) bool) {
		colA := typedColumnOf[A](w)
		colB := typedColumnOf[B](w)
		if colA == nil || colB == nil {
			return
		}

		w.activeQueries += 1
		defer func() { w.activeQueries -= 1 }()

		for row, entity := range colA.entities {
			b, ok := colB.get(entity)
			if !ok {
				continue
			}

			if !yield(Item2[A, B]{Entity: entity, First: &colA.values[row], Second: b}) {
				return
			}
		}
	}
}

type Item3[A, B, C any] struct {
	Entity Entity
	First  *A
	Second *B
	Third  *C
}

// Query3 yields every entity that has an A, a B and a C component.
func Query3[A IsComponent[A], B IsComponent[B], C IsComponent[C]](r Reader) iter.Seq[Item3[A, B, C]] {
	w := r.source()

	return func(yield func(Item3[A, B, C]) bool) {
		colC := typedColumnOf[C](w)
		if colC == nil {
			return
		}

		for item := range Query2[A, B](w) {
			c, ok := colC.get(item.Entity)
			if !ok {
				continue
			}

			if !yield(Item3[A, B, C]{Entity: item.Entity, First: item.First, Second: item.Second, Third: c}) {
				return
			}
		}
	}
}
