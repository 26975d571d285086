package syncclient

import "slices"

// Collection is an id-keyed set of records. It is not safe for concurrent
// use; View serializes access.
type Collection[T any] struct {
	id    func(T) int64
	items map[int64]T
}

func NewCollection[T any](id func(T) int64) *Collection[T] {
	return &Collection[T]{id: id, items: make(map[int64]T)}
}

// Seed drops every record and loads list.
func (c *Collection[T]) Seed(list []T) {
	c.items = make(map[int64]T, len(list))
	for _, item := range list {
		c.items[c.id(item)] = item
	}
}

// Add inserts item unless a record with the same id is already present.
// It reports whether the collection changed.
func (c *Collection[T]) Add(item T) bool {
	id := c.id(item)
	if _, ok := c.items[id]; ok {
		return false
	}
	c.items[id] = item
	return true
}

// Put replaces the record with item's id, inserting it when absent.
func (c *Collection[T]) Put(item T) {
	c.items[c.id(item)] = item
}

// Remove deletes id and reports whether it was present.
func (c *Collection[T]) Remove(id int64) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

// Items returns a copy of the records ordered by id.
func (c *Collection[T]) Items() []T {
	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.items[id])
	}
	return out
}
