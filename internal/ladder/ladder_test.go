package ladder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceKeyTruncates(t *testing.T) {
	assert.Equal(t, uint64(39500000000), PriceKey(395.0, 1e8))
	assert.Equal(t, uint64(39552100000), PriceKey(395.521, 1e8))
}

func TestAsksAscendBidsDescend(t *testing.T) {
	l := New(4)

	for _, p := range []uint64{300, 100, 200} {
		l.GetOrCreate(l.Asks, p).Queue = append(l.GetOrCreate(l.Asks, p).Queue, 1)
		l.GetOrCreate(l.Bids, p).Queue = append(l.GetOrCreate(l.Bids, p).Queue, 1)
	}

	var askOrder, bidOrder []uint64
	Ascend(l.Asks, func(lvl *Level) bool {
		askOrder = append(askOrder, lvl.Key)
		return true
	})
	Ascend(l.Bids, func(lvl *Level) bool {
		bidOrder = append(bidOrder, lvl.Key)
		return true
	})

	assert.Equal(t, []uint64{100, 200, 300}, askOrder)
	assert.Equal(t, []uint64{300, 200, 100}, bidOrder)
}

func TestBestSkipsTombstones(t *testing.T) {
	l := New(4)
	l.GetOrCreate(l.Asks, 100) // left empty: tombstone
	lvl := l.GetOrCreate(l.Asks, 200)
	lvl.Queue = append(lvl.Queue, 7)

	best, ok := Best(l.Asks)
	require.True(t, ok)
	assert.Equal(t, uint64(200), best.Key)
}

func TestBestEmptyTree(t *testing.T) {
	l := New(4)
	_, ok := Best(l.Asks)
	assert.False(t, ok)
}

func TestDeleteEvictsLevel(t *testing.T) {
	l := New(4)
	l.GetOrCreate(l.Asks, 100)
	Delete(l.Asks, 100)

	_, ok := Get(l.Asks, 100)
	assert.False(t, ok)
}
