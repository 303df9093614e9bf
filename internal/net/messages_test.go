package net

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironbook/internal/common"
)

func encodeNewOrder(asset common.AssetType, kind common.OrderKind, ticker string, price, qty float64, side common.Side, owner string) []byte {
	body := make([]byte, NewOrderMessageHeaderLen+len(owner))
	binary.BigEndian.PutUint16(body[0:2], uint16(asset))
	binary.BigEndian.PutUint16(body[2:4], uint16(kind))
	var t [4]byte
	copy(t[:], ticker)
	copy(body[4:8], t[:])
	binary.BigEndian.PutUint64(body[8:16], math.Float64bits(price))
	binary.BigEndian.PutUint64(body[16:24], math.Float64bits(qty))
	body[24] = byte(side)
	body[25] = byte(len(owner))
	copy(body[26:], owner)

	msg := make([]byte, BaseMessageHeaderLen+len(body))
	binary.BigEndian.PutUint16(msg[0:2], uint16(NewOrder))
	copy(msg[2:], body)
	return msg
}

func TestParseNewOrderRoundTrips(t *testing.T) {
	raw := encodeNewOrder(common.Equities, common.LimitOrder, "AAPL", 123.45, 10.5, common.Sell, "alice")

	parsed, err := parseMessage(raw)
	require.NoError(t, err)

	m, ok := parsed.(NewOrderMessage)
	require.True(t, ok)
	assert.Equal(t, common.Equities, m.AssetType)
	assert.Equal(t, common.LimitOrder, m.Kind)
	assert.Equal(t, "AAPL", m.Ticker)
	assert.Equal(t, 123.45, m.LimitPrice)
	assert.Equal(t, 10.5, m.Quantity)
	assert.Equal(t, common.Sell, m.Side)
	assert.Equal(t, "alice", m.Username)
}

func TestParseNewOrderTooShort(t *testing.T) {
	raw := encodeNewOrder(common.Equities, common.LimitOrder, "AAPL", 1, 1, common.Buy, "bob")
	_, err := parseMessage(raw[:len(raw)-2])
	assert.ErrorIs(t, err, ErrMessageTooShort)
}

func TestParseCancelOrderRoundTrips(t *testing.T) {
	id := uuid.New()
	body := make([]byte, CancelOrderMessageHeaderLen)
	binary.BigEndian.PutUint16(body[0:2], uint16(common.Crypto))
	copy(body[2:18], id[:])

	msg := make([]byte, BaseMessageHeaderLen+len(body))
	binary.BigEndian.PutUint16(msg[0:2], uint16(CancelOrder))
	copy(msg[2:], body)

	parsed, err := parseMessage(msg)
	require.NoError(t, err)

	m, ok := parsed.(CancelOrderMessage)
	require.True(t, ok)
	assert.Equal(t, common.Crypto, m.AssetType)
	assert.Equal(t, id, m.OrderID)
}

func TestParseUnknownMessageType(t *testing.T) {
	msg := make([]byte, BaseMessageHeaderLen)
	binary.BigEndian.PutUint16(msg[0:2], uint16(Heartbeat))
	_, err := parseMessage(msg)
	assert.ErrorIs(t, err, ErrInvalidMessageType)
}

func TestReportSerializeRoundTripsFixedFields(t *testing.T) {
	takerID := uuid.New()
	trade := common.Trade{
		TakerID:     takerID,
		MakerID:     uuid.New(),
		TakerOwner:  "alice",
		MakerOwner:  "bob",
		Ticker:      "AAPL",
		AssetType:   common.Equities,
		TakerSide:   common.Buy,
		Qty:         2.5,
		Price:       101.25,
		MakerFilled: true,
	}
	takerBytes, makerBytes := generateWireTradeReports(trade)

	require.True(t, len(takerBytes) > ReportFixedHeaderLen)
	assert.Equal(t, byte(ExecutionReport), takerBytes[0])
	assert.Equal(t, byte(common.Equities), takerBytes[1])
	assert.Equal(t, byte(common.Buy), takerBytes[2])

	qty := math.Float64frombits(binary.BigEndian.Uint64(takerBytes[11:19]))
	price := math.Float64frombits(binary.BigEndian.Uint64(takerBytes[19:27]))
	assert.Equal(t, 2.5, qty)
	assert.Equal(t, 101.25, price)

	assert.Equal(t, byte(common.Sell), makerBytes[2], "maker report carries the opposite side of the taker")
}
