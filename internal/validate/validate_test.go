package validate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ironbook/internal/common"
	"ironbook/internal/engine"
)

func TestOptionsRejectsExcessivePrecision(t *testing.T) {
	err := Options(engine.Options{Precision: MaxPrecision + 1})
	assert.ErrorIs(t, err, ErrPrecisionRange)
}

func TestOptionsAcceptsDefault(t *testing.T) {
	assert.NoError(t, Options(engine.DefaultOptions()))
}

func TestLimitRejectsNonPositiveQty(t *testing.T) {
	book := engine.NewBook(engine.DefaultOptions())
	err := Limit(uuid.New(), common.Buy, 0, 10.0, book)
	assert.ErrorIs(t, err, ErrNonPositiveQty)
}

func TestLimitRejectsNonPositivePrice(t *testing.T) {
	book := engine.NewBook(engine.DefaultOptions())
	err := Limit(uuid.New(), common.Buy, 1.0, 0, book)
	assert.ErrorIs(t, err, ErrNonPositivePrice)
}

func TestLimitRejectsDuplicateLiveID(t *testing.T) {
	book := engine.NewBook(engine.DefaultOptions())
	id := uuid.New()
	book.Execute(engine.Limit(id, common.Sell, 1.0, 10.0))

	err := Limit(id, common.Buy, 1.0, 10.0, book)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestLimitAcceptsValidOrder(t *testing.T) {
	book := engine.NewBook(engine.DefaultOptions())
	assert.NoError(t, Limit(uuid.New(), common.Buy, 1.0, 10.0, book))
}

func TestMarketRejectsNonPositiveQty(t *testing.T) {
	book := engine.NewBook(engine.DefaultOptions())
	err := Market(uuid.New(), common.Sell, -1.0, book)
	assert.ErrorIs(t, err, ErrNonPositiveQty)
}

func TestMarketAcceptsValidOrder(t *testing.T) {
	book := engine.NewBook(engine.DefaultOptions())
	assert.NoError(t, Market(uuid.New(), common.Sell, 1.0, book))
}
