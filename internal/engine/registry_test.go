package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironbook/internal/common"
)

func TestRegistryRoutesByAssetAndTicker(t *testing.T) {
	r := NewRegistry(Options{ArenaCapacity: 4, QueueCapacity: 2, Precision: 8})

	event := r.Execute(common.Equities, "AAPL", Limit(uuid.New(), common.Buy, 1.0, 100.0))
	assert.Equal(t, Placed, event.Kind)

	// Same ticker, different asset type: a distinct book, so no fill here.
	event = r.Execute(common.Crypto, "AAPL", Market(uuid.New(), common.Sell, 1.0))
	assert.Equal(t, Unfilled, event.Kind)

	// Same asset type and ticker: routes to the book that already has the resting bid.
	event = r.Execute(common.Equities, "AAPL", Market(uuid.New(), common.Sell, 1.0))
	require.Equal(t, Filled, event.Kind)
}

func TestRegistryBookIsStablePerAssetTicker(t *testing.T) {
	r := NewRegistry(DefaultOptions())

	first := r.Book(common.Equities, "MSFT")
	second := r.Book(common.Equities, "MSFT")
	assert.Same(t, first, second)

	other := r.Book(common.Equities, "AAPL")
	assert.NotSame(t, first, other)
}
