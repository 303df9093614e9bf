// Package ladder implements the price ladder: two ordered maps from a
// discrete integer price key to a FIFO queue of order-arena slot indices,
// one for bids (iterated highest price first) and one for asks (iterated
// lowest price first). Keys are integers so comparisons never hit
// floating-point equality hazards; user-visible prices are reconstructed by
// dividing back out the configured precision.
package ladder

import "github.com/tidwall/btree"

// Level is a single price level: the FIFO queue of arena slots resting at
// one discrete price on one side. Empty queues are tombstones: matching and
// cancellation leave the key in place, so every consumer of a Level must
// tolerate an empty Queue.
type Level struct {
	Key   uint64
	Queue []int
}

type tree = btree.BTreeG[*Level]

// Ladder holds the bid and ask price trees for one book.
type Ladder struct {
	Bids          *tree
	Asks          *tree
	queueCapacity int
}

// New builds an empty ladder. queueCapacity sizes the FIFO queue reserved
// for each newly created price level.
func New(queueCapacity int) *Ladder {
	return &Ladder{
		// Bids sort highest-first so Scan walks price priority for a seller.
		Bids: btree.NewBTreeG(func(a, b *Level) bool { return a.Key > b.Key }),
		// Asks sort lowest-first so Scan walks price priority for a buyer.
		Asks:          btree.NewBTreeG(func(a, b *Level) bool { return a.Key < b.Key }),
		queueCapacity: queueCapacity,
	}
}

// PriceKey derives the discrete price key for price under the given scale
// (10^precision), per spec: floor(price * scale).
func PriceKey(price float64, scale float64) uint64 {
	return uint64(price * scale)
}

// GetOrCreate returns the level at key on the given tree, creating an empty
// one (with the ladder's configured queue capacity) if absent.
func (l *Ladder) GetOrCreate(t *tree, key uint64) *Level {
	if lvl, ok := t.Get(&Level{Key: key}); ok {
		return lvl
	}
	lvl := &Level{Key: key, Queue: make([]int, 0, l.queueCapacity)}
	t.Set(lvl)
	return lvl
}

// Get looks up the level at key without creating it.
func Get(t *tree, key uint64) (*Level, bool) {
	return t.Get(&Level{Key: key})
}

// Delete evicts the level at key entirely (an alternative to leaving an
// empty tombstone). The engine does not call it: drained levels stay in
// the tree as tombstones.
func Delete(t *tree, key uint64) {
	t.Delete(&Level{Key: key})
}

// Best returns the first non-empty level in the tree's own iteration order
// (ascending for Asks, descending for Bids), or false if none remain.
func Best(t *tree) (*Level, bool) {
	var best *Level
	t.Scan(func(lvl *Level) bool {
		if len(lvl.Queue) == 0 {
			return true // keep scanning past tombstones
		}
		best = lvl
		return false
	})
	return best, best != nil
}

// Ascend walks t in the tree's own order: asks from lowest price, bids from
// highest price. It stops early if fn returns false.
func Ascend(t *tree, fn func(*Level) bool) {
	t.Scan(fn)
}
