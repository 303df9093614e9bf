package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"ironbook/internal/common"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short for specified username length")
)

// MessageType discriminates the three inbound command shapes this wire
// protocol carries: place an order, cancel one, or ask the server to log
// the book (a debugging aid, not a trading operation).
type MessageType int

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	LogBook
)

type ReportMessageType int

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

type Message interface {
	GetType() MessageType
}

// Message format constants. Quantity and LimitPrice are IEEE-754 doubles
// (spec's 64-bit float), transmitted as their big-endian bit pattern.
const (
	BaseMessageHeaderLen        = 2
	NewOrderMessageHeaderLen    = 2 + 2 + 4 + 8 + 8 + 1 + 1
	CancelOrderMessageHeaderLen = 2 + 16
	LogBookMessageHeaderLen     = 2 + 2 + 4
)

// BaseMessage is the 2-byte type tag every wire message starts with.
type BaseMessage struct {
	TypeOf MessageType
}

func (m BaseMessage) GetType() MessageType {
	return m.TypeOf
}

func parseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return BaseMessage{}, errors.New("message too short to contain header")
	}

	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	msg = msg[2:]
	switch typeOf {
	case NewOrder:
		return parseNewOrder(msg)
	case CancelOrder:
		return parseCancelOrder(msg)
	case LogBook:
		return parseLogBook(msg)
	default:
		return BaseMessage{}, ErrInvalidMessageType
	}
}

// NewOrderMessage places a market or limit order. A limit order's
// LimitPrice is the order's price; a market order's LimitPrice is carried
// through Order but ignored when the order is executed (Kind discriminates
// the two).
type NewOrderMessage struct {
	BaseMessage
	AssetType   common.AssetType
	Kind        common.OrderKind
	Ticker      string
	LimitPrice  float64
	Quantity    float64
	Side        common.Side
	UsernameLen uint8
	Username    string
}

// Order converts the wire message into the common.Order the boundary
// validation layer consumes, stamping a fresh external id and arrival
// timestamp.
func (o *NewOrderMessage) Order() common.Order {
	return common.Order{
		ID:         uuid.New(),
		AssetType:  o.AssetType,
		Kind:       o.Kind,
		Ticker:     o.Ticker,
		LimitPrice: o.LimitPrice,
		Quantity:   o.Quantity,
		Side:       o.Side,
		Owner:      o.Username,
		Timestamp:  time.Now(),
	}
}

func parseNewOrder(msg []byte) (NewOrderMessage, error) {
	if len(msg) < NewOrderMessageHeaderLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}

	m := NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}
	m.AssetType = common.AssetType(binary.BigEndian.Uint16(msg[0:2]))
	m.Kind = common.OrderKind(binary.BigEndian.Uint16(msg[2:4]))
	m.Ticker = string(msg[4:8])
	m.LimitPrice = math.Float64frombits(binary.BigEndian.Uint64(msg[8:16]))
	m.Quantity = math.Float64frombits(binary.BigEndian.Uint64(msg[16:24]))
	m.Side = common.Side(msg[24])
	m.UsernameLen = msg[25]

	expectedTotalLen := int(NewOrderMessageHeaderLen) + int(m.UsernameLen)
	if len(msg) < expectedTotalLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m.Username = string(msg[26 : 26+m.UsernameLen])

	return m, nil
}

// CancelOrderMessage cancels a resting order by its external id.
type CancelOrderMessage struct {
	BaseMessage
	AssetType common.AssetType
	OrderID   uuid.UUID
}

func parseCancelOrder(msg []byte) (CancelOrderMessage, error) {
	if len(msg) < CancelOrderMessageHeaderLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	m := CancelOrderMessage{BaseMessage: BaseMessage{TypeOf: CancelOrder}}
	m.AssetType = common.AssetType(binary.BigEndian.Uint16(msg[0:2]))
	id, err := uuid.FromBytes(msg[2:18])
	if err != nil {
		return CancelOrderMessage{}, fmt.Errorf("invalid order id: %w", err)
	}
	m.OrderID = id

	return m, nil
}

// LogBookMessage asks the server to dump the current depth of one
// instrument, for manual inspection (cmd/client's "log" action).
type LogBookMessage struct {
	BaseMessage
	AssetType common.AssetType
	Ticker    string
}

func parseLogBook(msg []byte) (LogBookMessage, error) {
	if len(msg) < LogBookMessageHeaderLen {
		return LogBookMessage{}, ErrMessageTooShort
	}
	m := LogBookMessage{BaseMessage: BaseMessage{TypeOf: LogBook}}
	m.AssetType = common.AssetType(binary.BigEndian.Uint16(msg[0:2]))
	m.Ticker = string(msg[2:6])
	return m, nil
}

// Report is a wire-level execution or error report sent back to a client.
type Report struct {
	MessageType     ReportMessageType
	AssetType       common.AssetType
	Side            common.Side
	Timestamp       uint64
	Quantity        float64
	Price           float64
	CounterpartyLen uint16
	ErrStrLen       uint32
	Ticker          string
	OrderID         uuid.UUID
	Err             string
	Counterparty    string
}

const ReportFixedHeaderLen = 1 + 1 + 1 + 8 + 8 + 8 + 2 + 4 + 4 + 16

// Serialize converts the report to be sent on the wire.
func (r *Report) Serialize() []byte {
	totalSize := ReportFixedHeaderLen + len(r.Err) + len(r.Counterparty)

	buf := make([]byte, totalSize)
	buf[0] = byte(r.MessageType)
	buf[1] = byte(r.AssetType)
	buf[2] = byte(r.Side)
	binary.BigEndian.PutUint64(buf[3:11], r.Timestamp)
	binary.BigEndian.PutUint64(buf[11:19], math.Float64bits(r.Quantity))
	binary.BigEndian.PutUint64(buf[19:27], math.Float64bits(r.Price))
	binary.BigEndian.PutUint16(buf[27:29], r.CounterpartyLen)
	binary.BigEndian.PutUint32(buf[29:33], r.ErrStrLen)

	var ticker [4]byte
	copy(ticker[:], r.Ticker)
	copy(buf[33:37], ticker[:])
	copy(buf[37:53], r.OrderID[:])

	offset := ReportFixedHeaderLen
	if r.ErrStrLen > 0 {
		copy(buf[offset:], r.Err)
	}
	offset += int(r.ErrStrLen)
	if r.CounterpartyLen > 0 {
		copy(buf[offset:], r.Counterparty)
	}
	return buf
}

// generateWireTradeReports builds the pair of execution reports addressed
// to each side of a fill (taker and maker), from the network boundary's
// own Trade (distinct from engine.Fill, which carries no owner/ticker).
func generateWireTradeReports(trade common.Trade) ([]byte, []byte) {
	takerReport := Report{
		MessageType:     ExecutionReport,
		AssetType:       trade.AssetType,
		Side:            trade.TakerSide,
		Timestamp:       uint64(trade.Timestamp.Unix()),
		Quantity:        trade.Qty,
		Price:           trade.Price,
		CounterpartyLen: uint16(len(trade.MakerOwner)),
		Ticker:          trade.Ticker,
		OrderID:         trade.TakerID,
		Counterparty:    trade.MakerOwner,
	}
	makerReport := Report{
		MessageType:     ExecutionReport,
		AssetType:       trade.AssetType,
		Side:            trade.TakerSide.Opposite(),
		Timestamp:       uint64(trade.Timestamp.Unix()),
		Quantity:        trade.Qty,
		Price:           trade.Price,
		CounterpartyLen: uint16(len(trade.TakerOwner)),
		Ticker:          trade.Ticker,
		OrderID:         trade.MakerID,
		Counterparty:    trade.TakerOwner,
	}
	return takerReport.Serialize(), makerReport.Serialize()
}

func generateWireErrorReport(err error) []byte {
	errStr := err.Error()
	report := Report{
		MessageType: ErrorReport,
		Timestamp:   uint64(time.Now().Unix()),
		ErrStrLen:   uint32(len(errStr)),
		Err:         errStr,
	}
	return report.Serialize()
}
