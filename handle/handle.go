// Package handle provides stable small-integer identities into homogeneous
// arenas. It is the backing store used by every other package in this
// module: NFA and DFA states, grammar terminals/nonterminals, and precedence
// bindings are all referred to by Handle rather than by pointer or by name.
// Productions are referred to by their plain int index instead.
//
// A Handle has meaning only relative to the arena that issued it; comparing
// or indexing with a Handle issued by a different arena is undefined and
// will either panic (out of range) or silently return an unrelated value.
// Arenas never reuse or relocate indices, so a Handle remains valid for the
// entire lifetime of the arena that produced it.
package handle

import "fmt"

// Handle is an opaque identity into an arena of T. The zero value is
// Handle(0), which refers to the first item an arena issues; it is only
// valid once at least one item has been inserted.
//
// The original research implementation this package is modeled on used an
// 8- or 16-bit integer for this core and flagged both as "possible type
// confusion" risks. A uint32 is used here instead so that no realistic
// grammar or DFA can silently truncate a handle.
type Handle[T any] uint32

// Index returns the handle's underlying small integer.
func (h Handle[T]) Index() int {
	return int(h)
}

func (h Handle[T]) String() string {
	return fmt.Sprintf("#%d", uint32(h))
}

// FromIndex constructs a Handle from a raw index. Used internally by arenas;
// callers should not normally need to construct handles directly.
func FromIndex[T any](i int) Handle[T] {
	return Handle[T](i)
}

// Vec is an append-only ordered sequence of T, indexed by handles issued in
// insertion order. It never reuses or relocates indices.
type Vec[T any] struct {
	items []T
}

// NewVec returns an empty arena.
func NewVec[T any]() *Vec[T] {
	return &Vec[T]{}
}

// Insert appends item to the arena and returns the handle that now refers to
// it.
func (v *Vec[T]) Insert(item T) Handle[T] {
	v.items = append(v.items, item)
	return FromIndex[T](len(v.items) - 1)
}

// Get returns the item at h. Panics if h is out of range for this arena.
func (v *Vec[T]) Get(h Handle[T]) T {
	return v.items[h.Index()]
}

// Set overwrites the item at h. Panics if h is out of range for this arena.
func (v *Vec[T]) Set(h Handle[T], item T) {
	v.items[h.Index()] = item
}

// Len returns the number of items inserted so far.
func (v *Vec[T]) Len() int {
	return len(v.items)
}

// Handles returns every handle issued by this arena, in insertion order.
func (v *Vec[T]) Handles() []Handle[T] {
	out := make([]Handle[T], len(v.items))
	for i := range v.items {
		out[i] = FromIndex[T](i)
	}
	return out
}

// All returns every item in the arena, in insertion order.
func (v *Vec[T]) All() []T {
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// Map is a mapping from handle to value that preserves deterministic
// iteration order (insertion order of keys), unlike a plain Go map keyed on
// a Handle.
type Map[K any, V any] struct {
	values map[Handle[K]]V
	order  []Handle[K]
}

// NewMap returns an empty handle-keyed map.
func NewMap[K any, V any]() *Map[K, V] {
	return &Map[K, V]{values: make(map[Handle[K]]V)}
}

// Set records v for k, appending k to the iteration order the first time it
// is seen.
func (m *Map[K, V]) Set(k Handle[K], v V) {
	if _, ok := m.values[k]; !ok {
		m.order = append(m.order, k)
	}
	m.values[k] = v
}

// Get returns the value set for k and whether it was present.
func (m *Map[K, V]) Get(k Handle[K]) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// MustGet returns the value set for k, panicking if absent.
func (m *Map[K, V]) MustGet(k Handle[K]) V {
	v, ok := m.values[k]
	if !ok {
		panic(fmt.Sprintf("handle.Map: no value set for %s", k))
	}
	return v
}

// Has reports whether k has an associated value.
func (m *Map[K, V]) Has(k Handle[K]) bool {
	_, ok := m.values[k]
	return ok
}

// Keys returns every key in insertion order.
func (m *Map[K, V]) Keys() []Handle[K] {
	out := make([]Handle[K], len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.order)
}
