// Package arena implements the order arena: a slab of resting-order records
// addressed by a dense slot index, with a secondary id->slot map for O(1)
// cancellation lookups. It is the idiomatic replacement for a pointer graph
// with back-edges (an order is referenced both by its external id, for
// cancellation, and by its slot, for matching): the arena owns the storage,
// slots are lightweight copyable indices, and a free-list lets slots be
// recycled without ever repacking the slab.
package arena

import "github.com/google/uuid"

// Order is a resting order: the unfilled remainder of a limit order living
// inside a price-level queue.
type Order struct {
	ID    uuid.UUID
	Price float64
	Qty   float64
}

// Arena is a sparse-growable vector of slots. Live slots hold a resting
// order; free slots are tracked by index in freeList and are eligible for
// reuse by the next Insert.
type Arena struct {
	slots    []Order
	occupied []bool
	index    map[uuid.UUID]int
	freeList []int
}

// New creates an arena with capacity pre-reserved for the given number of
// resting orders. Capacity is a hint only: the arena grows past it as
// needed, it never rejects an Insert for lack of room.
func New(capacity int) *Arena {
	return &Arena{
		slots:    make([]Order, 0, capacity),
		occupied: make([]bool, 0, capacity),
		index:    make(map[uuid.UUID]int, capacity),
	}
}

// Insert allocates a slot for a resting order (reusing a freed slot if one
// is available) and returns its index. The caller must link that index into
// the appropriate price-level queue.
func (a *Arena) Insert(id uuid.UUID, price, qty float64) int {
	order := Order{ID: id, Price: price, Qty: qty}

	if n := len(a.freeList); n > 0 {
		slot := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		a.slots[slot] = order
		a.occupied[slot] = true
		a.index[id] = slot
		return slot
	}

	slot := len(a.slots)
	a.slots = append(a.slots, order)
	a.occupied = append(a.occupied, true)
	a.index[id] = slot
	return slot
}

// Get returns the live resting order for id, if any.
func (a *Arena) Get(id uuid.UUID) (Order, bool) {
	slot, ok := a.index[id]
	if !ok {
		return Order{}, false
	}
	return a.slots[slot], true
}

// Slot returns the current record at a known slot index. The caller is
// expected to only pass slot indices it obtained from a price-level queue
// that has not yet been drained of that entry.
func (a *Arena) Slot(slot int) *Order {
	return &a.slots[slot]
}

// Lookup returns the slot index backing id, if live.
func (a *Arena) Lookup(id uuid.UUID) (int, bool) {
	slot, ok := a.index[id]
	return slot, ok
}

// Delete frees the slot belonging to id, if it exists, and returns whether
// it did. The freed slot is pushed onto the free-list for reuse; it is the
// caller's responsibility to also remove the slot from whichever ladder
// queue it was resting in.
func (a *Arena) Delete(id uuid.UUID) bool {
	slot, ok := a.index[id]
	if !ok {
		return false
	}
	delete(a.index, id)
	a.occupied[slot] = false
	a.freeList = append(a.freeList, slot)
	return true
}
