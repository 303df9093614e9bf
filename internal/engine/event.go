package engine

import (
	"github.com/google/uuid"

	"ironbook/internal/common"
)

// EventKind is the outcome Execute reports for a command.
type EventKind uint8

const (
	// Placed: a limit order rested on the book with no fills at all.
	Placed EventKind = iota
	// Filled: the order (market or limit) matched its entire quantity.
	Filled
	// PartiallyFilled: the order matched some quantity and, for a limit
	// order, the remainder now rests on the book.
	PartiallyFilled
	// Unfilled: a market order found nothing to match against.
	Unfilled
	// Canceled: a cancel command was processed (whether or not the id
	// was still live — cancellation is always idempotent).
	Canceled
)

// Fill is one resting order consumed (fully or partially) by an incoming
// taker order.
type Fill struct {
	TakerID   uuid.UUID
	MakerID   uuid.UUID
	Qty       float64
	Price     float64
	TakerSide common.Side
	// TotalFill reports whether this fill fully consumed the maker order.
	TotalFill bool
}

// Event is what Execute returns for every command.
type Event struct {
	Kind      EventKind
	ID        uuid.UUID
	FilledQty float64
	Fills     []Fill
}
