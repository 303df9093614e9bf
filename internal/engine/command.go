package engine

import (
	"github.com/google/uuid"

	"ironbook/internal/common"
)

// CommandKind is the discriminator for the three commands Execute accepts.
type CommandKind uint8

const (
	MarketCommand CommandKind = iota
	LimitCommand
	CancelCommand
)

// Command is the sole input to Book.Execute. Price is only meaningful for
// LimitCommand.
type Command struct {
	Kind  CommandKind
	ID    uuid.UUID
	Side  common.Side
	Qty   float64
	Price float64
}

// Market builds a market order command: matched against the opposite side
// until Qty is exhausted or the book runs dry on that side.
func Market(id uuid.UUID, side common.Side, qty float64) Command {
	return Command{Kind: MarketCommand, ID: id, Side: side, Qty: qty}
}

// Limit builds a limit order command: matched against any opposite price
// better-or-equal to price, with any remainder resting on the book.
func Limit(id uuid.UUID, side common.Side, qty, price float64) Command {
	return Command{Kind: LimitCommand, ID: id, Side: side, Qty: qty, Price: price}
}

// Cancel builds a command removing a resting order by id. Unknown ids are
// not an error: Cancel always succeeds idempotently.
func Cancel(id uuid.UUID) Command {
	return Command{Kind: CancelCommand, ID: id}
}
