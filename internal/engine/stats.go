package engine

// Trade summarizes the most recent batch of fills produced by a single
// Execute call, frozen in place until the next trade-producing Execute
// (it is never cleared back to zero between trades).
type Trade struct {
	TotalQty  float64
	AvgPrice  float64
	LastQty   float64
	LastPrice float64
}

// BookLevel is one row of a depth snapshot.
type BookLevel struct {
	Price float64
	Qty   float64
}

// BookDepth is a point-in-time snapshot of every occupied price level on
// each side. Asks and Bids are both ordered ascending by price. Levels
// echoes the value requested of Depth — it is not applied as a truncation
// bound on Asks/Bids.
type BookDepth struct {
	Levels int
	Asks   []BookLevel
	Bids   []BookLevel
}

// Options configures a new Book. Zero-value fields are replaced by
// DefaultOptions' values by NewBook.
type Options struct {
	// ArenaCapacity hints how many resting orders to pre-reserve storage
	// for. Purely an allocation hint: the arena grows past it freely.
	ArenaCapacity int
	// QueueCapacity hints how many orders a single price level's FIFO
	// queue should pre-reserve space for.
	QueueCapacity int
	// Precision is the number of decimal digits of price/quantity
	// retained when deriving the discrete integer price key and when
	// rounding reported fill quantities.
	Precision uint
	// TrackStats enables LastTrade()/TradedVolume() bookkeeping. Off by
	// default: a book that nobody queries for stats pays nothing for it.
	TrackStats bool
}

// DefaultOptions returns the engine's documented defaults: capacity for
// 10,000 resting orders, a 10-order-deep queue reservation per price
// level, 8 digits of decimal precision, and stats tracking disabled.
func DefaultOptions() Options {
	return Options{
		ArenaCapacity: 10000,
		QueueCapacity: 10,
		Precision:     8,
		TrackStats:    false,
	}
}
