// Package validate is the boundary between untrusted order flow and the
// matching engine. internal/engine.Book.Execute has no error return
// channel by design; anything that would make an engine operation
// ill-defined (non-positive quantity, non-positive limit price, an id
// that is already resting) must be rejected here, before a Command is
// ever built.
package validate

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ironbook/internal/common"
	"ironbook/internal/engine"
)

var (
	ErrNonPositiveQty   = errors.New("quantity must be positive")
	ErrNonPositivePrice = errors.New("limit price must be positive")
	ErrUnknownSide      = errors.New("unrecognized order side")
	ErrDuplicateID      = errors.New("order id already resting on the book")
	ErrPrecisionRange   = errors.New("precision out of range")
)

// MaxPrecision bounds configured decimal precision: past this, the
// price-key scale (10^precision) overflows the uint64 keys the ladder
// uses for prices at any realistic instrument price.
const MaxPrecision = 12

// Liveness reports whether an order id currently rests on a book, so
// duplicate-id submission can be rejected per spec.md's Open Question
// resolution (an engine with no error channel cannot reject it itself).
type Liveness interface {
	Live(id uuid.UUID) bool
}

// Options validates a Book's configuration before construction.
func Options(opts engine.Options) error {
	if opts.Precision > MaxPrecision {
		return fmt.Errorf("%w: %d > %d", ErrPrecisionRange, opts.Precision, MaxPrecision)
	}
	return nil
}

// Market validates a market order before it becomes engine.Market(...).
func Market(id uuid.UUID, side common.Side, qty float64, book Liveness) error {
	if side != common.Buy && side != common.Sell {
		return ErrUnknownSide
	}
	if qty <= 0 {
		return ErrNonPositiveQty
	}
	if book.Live(id) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	return nil
}

// Limit validates a limit order before it becomes engine.Limit(...).
func Limit(id uuid.UUID, side common.Side, qty, price float64, book Liveness) error {
	if side != common.Buy && side != common.Sell {
		return ErrUnknownSide
	}
	if qty <= 0 {
		return ErrNonPositiveQty
	}
	if price <= 0 {
		return ErrNonPositivePrice
	}
	if book.Live(id) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	return nil
}
