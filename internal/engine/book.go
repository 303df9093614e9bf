package engine

import (
	"math"

	"github.com/google/uuid"

	"ironbook/internal/arena"
	"ironbook/internal/common"
	"ironbook/internal/ladder"
)

// Book is a single-instrument limit order book: an order arena paired with
// a bid/ask price ladder, matched with strict price-time priority. A Book
// has no I/O of its own and returns no errors from Execute — callers are
// expected to validate commands at the boundary (see internal/validate)
// before handing them to the engine.
type Book struct {
	arena  *arena.Arena
	ladder *ladder.Ladder
	scale  float64

	minAsk *float64
	maxBid *float64

	trackStats   bool
	lastTrade    *Trade
	tradedVolume float64
}

// NewBook constructs an empty book. Zero-value fields in opts fall back to
// DefaultOptions().
func NewBook(opts Options) *Book {
	def := DefaultOptions()
	if opts.ArenaCapacity == 0 {
		opts.ArenaCapacity = def.ArenaCapacity
	}
	if opts.QueueCapacity == 0 {
		opts.QueueCapacity = def.QueueCapacity
	}
	if opts.Precision == 0 {
		opts.Precision = def.Precision
	}
	return &Book{
		arena:      arena.New(opts.ArenaCapacity),
		ladder:     ladder.New(opts.QueueCapacity),
		scale:      math.Pow(10, float64(opts.Precision)),
		trackStats: opts.TrackStats,
	}
}

// Live reports whether id currently rests on the book. Exposed for the
// validation boundary, which rejects a second order submitted under an id
// still live (see internal/validate).
func (b *Book) Live(id uuid.UUID) bool {
	_, ok := b.arena.Lookup(id)
	return ok
}

// TrackStats turns stats bookkeeping on or off. Turning it off does not
// clear any trade already recorded; turning it back on resumes updating it.
func (b *Book) TrackStats(on bool) {
	b.trackStats = on
}

// MinAsk returns the lowest resting ask price, if any order is resting on
// the ask side.
func (b *Book) MinAsk() (float64, bool) {
	if b.minAsk == nil {
		return 0, false
	}
	return *b.minAsk, true
}

// MaxBid returns the highest resting bid price, if any order is resting on
// the bid side.
func (b *Book) MaxBid() (float64, bool) {
	if b.maxBid == nil {
		return 0, false
	}
	return *b.maxBid, true
}

// Spread returns MinAsk - MaxBid. It requires both sides to have resting
// liquidity; a one-sided or empty book has no spread.
func (b *Book) Spread() (float64, bool) {
	if b.minAsk == nil || b.maxBid == nil {
		return 0, false
	}
	return *b.minAsk - *b.maxBid, true
}

// LastTrade returns the most recent trade summary, if TrackStats has ever
// observed a fill. The value is frozen in place between trades, never
// reset to zero.
func (b *Book) LastTrade() (Trade, bool) {
	if b.lastTrade == nil {
		return Trade{}, false
	}
	return *b.lastTrade, true
}

// TradedVolume returns the cumulative filled quantity observed while
// TrackStats has been enabled.
func (b *Book) TradedVolume() float64 {
	return b.tradedVolume
}

// Depth reports every occupied price level on each side. levels is a
// capacity hint only — matching the grounding source, it is not applied as
// a truncation bound, so callers wanting the top N levels must slice the
// result themselves.
func (b *Book) Depth(levels int) BookDepth {
	depth := BookDepth{Levels: levels, Asks: make([]BookLevel, 0, levels)}

	ladder.Ascend(b.ladder.Asks, func(lvl *ladder.Level) bool {
		if len(lvl.Queue) == 0 {
			return true
		}
		depth.Asks = append(depth.Asks, BookLevel{Price: b.price(lvl.Key), Qty: b.levelQty(lvl)})
		return true
	})

	var bids []BookLevel
	ladder.Ascend(b.ladder.Bids, func(lvl *ladder.Level) bool {
		if len(lvl.Queue) == 0 {
			return true
		}
		bids = append(bids, BookLevel{Price: b.price(lvl.Key), Qty: b.levelQty(lvl)})
		return true
	})
	// b.ladder.Bids iterates highest price first; Depth documents bids in
	// ascending-price order, so reverse what the scan collected.
	depth.Bids = make([]BookLevel, len(bids))
	for i, lv := range bids {
		depth.Bids[len(bids)-1-i] = lv
	}

	return depth
}

func (b *Book) levelQty(lvl *ladder.Level) float64 {
	var total float64
	for _, slot := range lvl.Queue {
		total += b.arena.Slot(slot).Qty
	}
	return total
}

func (b *Book) price(key uint64) float64 {
	return float64(key) / b.scale
}

func (b *Book) key(price float64) uint64 {
	return ladder.PriceKey(price, b.scale)
}

// Execute applies one command and reports its outcome.
func (b *Book) Execute(cmd Command) Event {
	event := b.dispatch(cmd)
	if b.trackStats {
		b.observe(event)
	}
	return event
}

func (b *Book) dispatch(cmd Command) Event {
	switch cmd.Kind {
	case MarketCommand:
		fills, remaining := b.market(cmd.ID, cmd.Side, cmd.Qty)
		return b.marketEvent(cmd.ID, cmd.Qty, remaining, fills)
	case LimitCommand:
		fills, remaining := b.limit(cmd.ID, cmd.Side, cmd.Qty, cmd.Price)
		return b.limitEvent(cmd.ID, cmd.Qty, remaining, fills)
	case CancelCommand:
		b.cancel(cmd.ID)
		return Event{Kind: Canceled, ID: cmd.ID}
	default:
		panic("engine: unknown command kind")
	}
}

func (b *Book) marketEvent(id uuid.UUID, qty, remaining float64, fills []Fill) Event {
	if len(fills) == 0 {
		return Event{Kind: Unfilled, ID: id}
	}
	filled := b.round(qty - remaining)
	if remaining > 0 {
		return Event{Kind: PartiallyFilled, ID: id, FilledQty: filled, Fills: fills}
	}
	return Event{Kind: Filled, ID: id, FilledQty: filled, Fills: fills}
}

func (b *Book) limitEvent(id uuid.UUID, qty, remaining float64, fills []Fill) Event {
	if len(fills) == 0 {
		return Event{Kind: Placed, ID: id}
	}
	filled := b.round(qty - remaining)
	if remaining > 0 {
		return Event{Kind: PartiallyFilled, ID: id, FilledQty: filled, Fills: fills}
	}
	return Event{Kind: Filled, ID: id, FilledQty: filled, Fills: fills}
}

func (b *Book) observe(event Event) {
	if len(event.Fills) == 0 {
		return
	}
	b.tradedVolume += event.FilledQty

	var sumPriceQty float64
	for _, f := range event.Fills {
		sumPriceQty += f.Price * f.Qty
	}
	last := event.Fills[len(event.Fills)-1]
	b.lastTrade = &Trade{
		TotalQty:  event.FilledQty,
		AvgPrice:  sumPriceQty / event.FilledQty,
		LastQty:   last.Qty,
		LastPrice: last.Price,
	}
}

// round truncates qty to the book's configured precision, matching the
// same scaled-integer grid used for price keys. A quantity smaller than one
// grid step (1/scale) truncates to zero.
func (b *Book) round(qty float64) float64 {
	return float64(uint64(qty*b.scale)) / b.scale
}

func (b *Book) market(id uuid.UUID, side common.Side, qty float64) ([]Fill, float64) {
	var fills []Fill
	var remaining float64
	if side == common.Buy {
		remaining = b.matchAsks(id, qty, nil, &fills)
	} else {
		remaining = b.matchBids(id, qty, nil, &fills)
	}
	return fills, remaining
}

func (b *Book) limit(id uuid.UUID, side common.Side, qty, price float64) ([]Fill, float64) {
	var fills []Fill
	var remaining float64

	if side == common.Buy {
		remaining = b.matchAsks(id, qty, &price, &fills)
		if remaining > 0 {
			b.rest(id, common.Buy, price, remaining)
		}
	} else {
		remaining = b.matchBids(id, qty, &price, &fills)
		if remaining > 0 {
			b.rest(id, common.Sell, price, remaining)
		}
	}
	return fills, remaining
}

func (b *Book) rest(id uuid.UUID, side common.Side, price, qty float64) {
	slot := b.arena.Insert(id, price, qty)
	key := b.key(price)

	if side == common.Buy {
		lvl := b.ladder.GetOrCreate(b.ladder.Bids, key)
		lvl.Queue = append(lvl.Queue, slot)
		if b.maxBid == nil || price > *b.maxBid {
			b.maxBid = &price
		}
		return
	}
	lvl := b.ladder.GetOrCreate(b.ladder.Asks, key)
	lvl.Queue = append(lvl.Queue, slot)
	if b.minAsk == nil || price < *b.minAsk {
		b.minAsk = &price
	}
}

// matchAsks walks the ask ladder from the lowest price, filling a buy
// order of qty (optionally limited to limitPrice) against resting asks.
// It returns the quantity left unfilled.
func (b *Book) matchAsks(takerID uuid.UUID, qty float64, limitPrice *float64, fills *[]Fill) float64 {
	remaining := qty
	updateBest := b.minAsk == nil

	ladder.Ascend(b.ladder.Asks, func(lvl *ladder.Level) bool {
		if len(lvl.Queue) == 0 {
			return true
		}
		askPrice := b.price(lvl.Key)
		if updateBest {
			b.minAsk = &askPrice
			updateBest = false
		}
		if limitPrice != nil && *limitPrice < askPrice {
			return false
		}
		if remaining == 0 {
			return false
		}
		filled := b.processQueue(lvl, remaining, takerID, common.Buy, fills)
		if len(lvl.Queue) == 0 {
			updateBest = true
		}
		remaining -= filled
		return true
	})

	b.refreshMinAsk()
	return remaining
}

// matchBids walks the bid ladder from the highest price, filling a sell
// order of qty (optionally limited to limitPrice) against resting bids.
func (b *Book) matchBids(takerID uuid.UUID, qty float64, limitPrice *float64, fills *[]Fill) float64 {
	remaining := qty
	updateBest := b.maxBid == nil

	ladder.Ascend(b.ladder.Bids, func(lvl *ladder.Level) bool {
		if len(lvl.Queue) == 0 {
			return true
		}
		bidPrice := b.price(lvl.Key)
		if updateBest {
			b.maxBid = &bidPrice
			updateBest = false
		}
		if limitPrice != nil && *limitPrice > bidPrice {
			return false
		}
		if remaining == 0 {
			return false
		}
		filled := b.processQueue(lvl, remaining, takerID, common.Sell, fills)
		if len(lvl.Queue) == 0 {
			updateBest = true
		}
		remaining -= filled
		return true
	})

	b.refreshMaxBid()
	return remaining
}

// processQueue drains a price level's FIFO queue against remainingQty,
// oldest order first, mutating partially-filled resting orders in place
// and evicting the contiguous prefix of orders it fully consumes. It
// returns the quantity actually filled at this level.
func (b *Book) processQueue(lvl *ladder.Level, remainingQty float64, takerID uuid.UUID, takerSide common.Side, fills *[]Fill) float64 {
	toFill := remainingQty
	var filled float64
	drainThrough := -1

	for i, slot := range lvl.Queue {
		if toFill == 0 {
			break
		}
		order := b.arena.Slot(slot)
		if order.Qty == 0 {
			drainThrough = i
			continue
		}

		tradePrice := order.Price
		var tradeQty float64
		var totalFill bool
		if toFill >= order.Qty {
			tradeQty = order.Qty
			toFill -= order.Qty
			drainThrough = i
			totalFill = true
		} else {
			tradeQty = toFill
			toFill = 0
		}
		order.Qty -= tradeQty

		*fills = append(*fills, Fill{
			TakerID:   takerID,
			MakerID:   order.ID,
			Qty:       tradeQty,
			Price:     tradePrice,
			TakerSide: takerSide,
			TotalFill: totalFill,
		})
		filled += tradeQty
	}

	if drainThrough >= 0 {
		for _, slot := range lvl.Queue[:drainThrough+1] {
			b.arena.Delete(b.arena.Slot(slot).ID)
		}
		lvl.Queue = lvl.Queue[drainThrough+1:]
	}

	return filled
}

// cancel removes a resting order by id. Unknown ids are a no-op: the
// engine has no error channel, so a late or duplicate cancel is silently
// accepted. Both sides are probed regardless of which one actually holds
// the order, since the arena alone does not record which side an order
// rests on.
func (b *Book) cancel(id uuid.UUID) {
	order, ok := b.arena.Get(id)
	if !ok {
		return
	}
	slot, _ := b.arena.Lookup(id)
	key := b.key(order.Price)

	if lvl, found := ladder.Get(b.ladder.Asks, key); found {
		dropSlot(lvl, slot)
		b.refreshMinAsk()
	}
	if lvl, found := ladder.Get(b.ladder.Bids, key); found {
		dropSlot(lvl, slot)
		b.refreshMaxBid()
	}
	b.arena.Delete(id)
}

func dropSlot(lvl *ladder.Level, slot int) {
	for i, s := range lvl.Queue {
		if s == slot {
			lvl.Queue = append(lvl.Queue[:i], lvl.Queue[i+1:]...)
			return
		}
	}
}

func (b *Book) refreshMinAsk() {
	lvl, ok := ladder.Best(b.ladder.Asks)
	if !ok {
		b.minAsk = nil
		return
	}
	price := b.price(lvl.Key)
	b.minAsk = &price
}

func (b *Book) refreshMaxBid() {
	lvl, ok := ladder.Best(b.ladder.Bids)
	if !ok {
		b.maxBid = nil
		return
	}
	price := b.price(lvl.Key)
	b.maxBid = &price
}
