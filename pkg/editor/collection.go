package editor

import "slices"

// collection is an insertion-ordered set of entities keyed by id. It is not
// synchronized; Project guards it.
type collection[T any] struct {
	items []T
	id    func(T) string
	clone func(T) T
}

func newCollection[T any](id func(T) string, clone func(T) T) *collection[T] {
	return &collection[T]{id: id, clone: clone}
}

func (c *collection[T]) index(id string) int {
	return slices.IndexFunc(c.items, func(v T) bool { return c.id(v) == id })
}

func (c *collection[T]) get(id string) (T, bool) {
	if i := c.index(id); i >= 0 {
		return c.clone(c.items[i]), true
	}
	var zero T
	return zero, false
}

// put inserts v or replaces the entity with the same id in place.
func (c *collection[T]) put(v T) {
	v = c.clone(v)
	if i := c.index(c.id(v)); i >= 0 {
		c.items[i] = v
		return
	}
	c.items = append(c.items, v)
}

func (c *collection[T]) remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}

func (c *collection[T]) all() []T {
	out := make([]T, len(c.items))
	for i, v := range c.items {
		out[i] = c.clone(v)
	}
	return out
}

func (c *collection[T]) ids() []string {
	out := make([]string, len(c.items))
	for i, v := range c.items {
		out[i] = c.id(v)
	}
	return out
}

