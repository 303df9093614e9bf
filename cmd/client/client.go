// Command client is a minimal CLI for exercising a running ironbook server
// by hand: place an order, cancel one, or ask the server to log a book's
// depth, then print whatever execution/error reports come back.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"ironbook/internal/common"
	ibnet "ironbook/internal/net"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the ironbook server")
	owner := flag.String("owner", "", "owner username (required)")
	action := flag.String("action", "place", "action to perform: place, cancel, log")

	ticker := flag.String("ticker", "AAPL", "ticker symbol (max 4 chars)")
	sideStr := flag.String("side", "buy", "order side: buy or sell")
	typeStr := flag.String("type", "limit", "order type: limit or market")
	price := flag.Float64("price", 100.0, "limit price")
	qtyStr := flag.String("qty", "10", "quantity, or a comma-separated list (e.g. 10,20,50)")

	orderID := flag.String("id", "", "order id to cancel (uuid)")

	flag.Parse()

	if *owner == "" {
		fmt.Println("error: -owner is required")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s as %q\n", *serverAddr, *owner)

	go readReports(conn)

	side := common.Buy
	if strings.ToLower(*sideStr) == "sell" {
		side = common.Sell
	}
	kind := common.LimitOrder
	if strings.ToLower(*typeStr) == "market" {
		kind = common.MarketOrder
	}

	switch strings.ToLower(*action) {
	case "place":
		for _, qty := range parseQuantities(*qtyStr) {
			if err := sendPlaceOrder(conn, *owner, common.Equities, kind, *ticker, *price, qty, side); err != nil {
				log.Printf("failed to place order (qty %v): %v", qty, err)
				continue
			}
			fmt.Printf("-> sent %s %s %v @ %.2f\n", strings.ToUpper(*sideStr), *ticker, qty, *price)
		}
	case "cancel":
		if *orderID == "" {
			log.Fatal("error: -id is required for cancel")
		}
		id, err := uuid.Parse(*orderID)
		if err != nil {
			log.Fatalf("invalid -id: %v", err)
		}
		if err := sendCancelOrder(conn, common.Equities, id); err != nil {
			log.Printf("failed to send cancel: %v", err)
		} else {
			fmt.Printf("-> sent cancel for %s\n", id)
		}
	case "log":
		if err := sendLog(conn, common.Equities, *ticker); err != nil {
			log.Printf("failed to send log request: %v", err)
		} else {
			fmt.Println("-> sent log request")
		}
	default:
		log.Fatalf("unknown action: %s", *action)
	}

	fmt.Println("listening for reports... (ctrl-c to exit)")
	select {}
}

// parseQuantities splits a comma-separated string into floats, skipping
// anything that doesn't parse.
func parseQuantities(input string) []float64 {
	var result []float64
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if val, err := strconv.ParseFloat(p, 64); err == nil {
			result = append(result, val)
		} else {
			log.Printf("warning: invalid quantity %q, skipping", p)
		}
	}
	return result
}

func sendPlaceOrder(conn net.Conn, owner string, asset common.AssetType, kind common.OrderKind, ticker string, price, qty float64, side common.Side) error {
	usernameLen := len(owner)
	totalLen := ibnet.BaseMessageHeaderLen + ibnet.NewOrderMessageHeaderLen + usernameLen
	buf := make([]byte, totalLen)

	binary.BigEndian.PutUint16(buf[0:2], uint16(ibnet.NewOrder))

	binary.BigEndian.PutUint16(buf[2:4], uint16(asset))
	binary.BigEndian.PutUint16(buf[4:6], uint16(kind))

	var tickerBytes [4]byte
	copy(tickerBytes[:], ticker)
	copy(buf[6:10], tickerBytes[:])

	binary.BigEndian.PutUint64(buf[10:18], math.Float64bits(price))
	binary.BigEndian.PutUint64(buf[18:26], math.Float64bits(qty))

	buf[26] = byte(side)
	buf[27] = uint8(usernameLen)
	copy(buf[28:], owner)

	_, err := conn.Write(buf)
	return err
}

func sendCancelOrder(conn net.Conn, asset common.AssetType, id uuid.UUID) error {
	buf := make([]byte, ibnet.BaseMessageHeaderLen+ibnet.CancelOrderMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ibnet.CancelOrder))
	binary.BigEndian.PutUint16(buf[2:4], uint16(asset))
	copy(buf[4:20], id[:])

	_, err := conn.Write(buf)
	return err
}

func sendLog(conn net.Conn, asset common.AssetType, ticker string) error {
	buf := make([]byte, ibnet.BaseMessageHeaderLen+ibnet.LogBookMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ibnet.LogBook))
	binary.BigEndian.PutUint16(buf[2:4], uint16(asset))
	var tickerBytes [4]byte
	copy(tickerBytes[:], ticker)
	copy(buf[4:8], tickerBytes[:])
	_, err := conn.Write(buf)
	return err
}

// readReports prints every Report frame the server sends back, until the
// connection closes.
func readReports(conn net.Conn) {
	for {
		header := make([]byte, ibnet.ReportFixedHeaderLen)
		if _, err := io.ReadFull(conn, header); err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}

		msgType := ibnet.ReportMessageType(header[0])
		side := common.Side(header[2])
		qty := math.Float64frombits(binary.BigEndian.Uint64(header[11:19]))
		price := math.Float64frombits(binary.BigEndian.Uint64(header[19:27]))
		counterpartyLen := binary.BigEndian.Uint16(header[27:29])
		errStrLen := binary.BigEndian.Uint32(header[29:33])
		ticker := strings.TrimRight(string(header[33:37]), "\x00")
		id, _ := uuid.FromBytes(header[37:53])

		varLen := int(counterpartyLen) + int(errStrLen)
		var varBuf []byte
		if varLen > 0 {
			varBuf = make([]byte, varLen)
			if _, err := io.ReadFull(conn, varBuf); err != nil {
				log.Printf("error reading report body: %v", err)
				return
			}
		}

		var errStr, counterparty string
		if errStrLen > 0 {
			errStr = string(varBuf[:errStrLen])
		}
		if counterpartyLen > 0 {
			counterparty = string(varBuf[errStrLen:])
		}

		if msgType == ibnet.ErrorReport {
			fmt.Printf("\n[error] %s\n", errStr)
			continue
		}
		sideStr := "BUY"
		if side == common.Sell {
			sideStr = "SELL"
		}
		fmt.Printf("\n[fill] %s %s | qty %.8f | price %.8f | vs %s | id %s\n",
			sideStr, ticker, qty, price, counterparty, id)
	}
}
