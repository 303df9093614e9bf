package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trade is a single maker/taker match, used to address execution reports to
// the two parties that crossed. It carries the owner/ticker context the
// core's engine.Fill does not, since it exists at the network boundary.
type Trade struct {
	TakerID     uuid.UUID
	MakerID     uuid.UUID
	TakerOwner  string
	MakerOwner  string
	Ticker      string
	AssetType   AssetType
	TakerSide   Side
	Timestamp   time.Time
	Qty         float64
	Price       float64
	MakerFilled bool
}

func (t Trade) String() string {
	return fmt.Sprintf(
		`Taker:     %s (%s)
Maker:     %s (%s)
Ticker:    %s
TakerSide: %s
Timestamp: %v
Qty:       %f
Price:     %f
MakerFilled: %v`,
		t.TakerID, t.TakerOwner,
		t.MakerID, t.MakerOwner,
		t.Ticker,
		t.TakerSide,
		t.Timestamp.Format(time.RFC3339),
		t.Qty,
		t.Price,
		t.MakerFilled,
	)
}
