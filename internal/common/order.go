// Package common holds the vocabulary shared between the matching core and
// its external collaborators (the wire protocol, the CLI): asset routing,
// order sides, and order kinds.
package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssetType routes a command to the book instance that owns that asset.
type AssetType uint16

const (
	Equities AssetType = iota
	Crypto
	FX
)

// Side is the side of the book an order rests on or trades against.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderKind distinguishes the three command shapes the engine accepts.
type OrderKind uint8

const (
	LimitOrder OrderKind = iota
	MarketOrder
	CancelOrderKind
)

// Order describes an incoming order as received from a collaborator (the
// wire protocol, the CLI). The engine only keeps the subset of these fields
// it needs to rest an order (see internal/arena.Order); Ticker, Owner and
// the timestamps exist for reporting and bookkeeping at the boundary.
type Order struct {
	ID            uuid.UUID
	AssetType     AssetType
	Kind          OrderKind
	Ticker        string
	Side          Side
	LimitPrice    float64
	Quantity      float64
	Timestamp     time.Time // arrival time, stamped by the server on receipt
	ExchTimestamp time.Time // time the exchange accepted the order
	Owner         string
}

func (o Order) String() string {
	return fmt.Sprintf(
		`ID:            %s
AssetType:     %v
Kind:          %v
Ticker:        %s
Side:          %s
LimitPrice:    %f
Quantity:      %f
Timestamp:     %v
ExchTimestamp: %v
Owner:         %s`,
		o.ID,
		o.AssetType,
		o.Kind,
		o.Ticker,
		o.Side,
		o.LimitPrice,
		o.Quantity,
		o.Timestamp.Format(time.RFC3339),
		o.ExchTimestamp.Format(time.RFC3339),
		o.Owner,
	)
}
