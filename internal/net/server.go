package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"ironbook/internal/common"
	"ironbook/internal/engine"
	"ironbook/internal/utils"
	"ironbook/internal/validate"
)

const (
	MaxRecvSize        = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = time.Second
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
	ErrClientDoesNotExist = errors.New("client does not exist")
)

// ClientSession is a live TCP connection the server can still write to.
type ClientSession struct {
	conn net.Conn
}

// ClientMessage links a parsed message to the address it arrived from.
type ClientMessage struct {
	clientAddress string
	message       Message
}

// Server is the TCP front end: it parses wire messages, validates them at
// the boundary, drives one engine.Registry, and reports fills and errors
// back over the originating connection. It adds no matching logic of its
// own — every order lands on the book only via internal/engine.Book.Execute.
type Server struct {
	address  string
	port     int
	registry *engine.Registry
	pool     utils.WorkerPool

	cancel context.CancelFunc

	sessionsLock   sync.Mutex
	clientSessions map[string]ClientSession
	// ownerAddress remembers the last connection address a given owner
	// submitted an order from, so a maker's fill can be routed back to
	// them even though the fill only carries the maker's order id.
	ownerAddress map[string]string
	// orderOwners maps a live external order id to the (owner, ticker,
	// asset type) it was placed under, since engine.Fill carries only ids.
	orderOwners map[uuid.UUID]orderOwner

	clientMessages chan ClientMessage
}

type orderOwner struct {
	owner     string
	ticker    string
	assetType common.AssetType
}

// New builds a server that will listen on address:port once Run starts,
// routing traffic to registry.
func New(address string, port int, registry *engine.Registry) *Server {
	return &Server{
		address:        address,
		port:           port,
		registry:       registry,
		pool:           utils.NewWorkerPool(defaultNWorkers),
		clientSessions: make(map[string]ClientSession),
		ownerAddress:   make(map[string]string),
		orderOwners:    make(map[uuid.UUID]orderOwner),
		clientMessages: make(chan ClientMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	s.cancel()
}

// Run starts the listener, worker pool, and session handler, and blocks
// accepting connections until ctx is canceled.
func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})

	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			log.Info().Str("address", conn.RemoteAddr().String()).Msg("new client connected")
			s.addClientSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

// ReportFill sends one execution report to each side of a trade, routed
// by the owner each party last connected as.
func (s *Server) ReportFill(trade common.Trade) error {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()

	takerBytes, makerBytes := generateWireTradeReports(trade)

	if err := s.writeToOwnerLocked(trade.TakerOwner, takerBytes); err != nil {
		return err
	}
	return s.writeToOwnerLocked(trade.MakerOwner, makerBytes)
}

// ReportError sends an error report to the client at clientAddress.
func (s *Server) ReportError(clientAddress string, reportErr error) error {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()

	client, ok := s.clientSessions[clientAddress]
	if !ok {
		return ErrClientDoesNotExist
	}
	if _, err := client.conn.Write(generateWireErrorReport(reportErr)); err != nil {
		delete(s.clientSessions, clientAddress)
		return fmt.Errorf("unable to send report: %w", err)
	}
	return nil
}

func (s *Server) writeToOwnerLocked(owner string, report []byte) error {
	address, ok := s.ownerAddress[owner]
	if !ok {
		return ErrClientDoesNotExist
	}
	client, ok := s.clientSessions[address]
	if !ok {
		return ErrClientDoesNotExist
	}
	if _, err := client.conn.Write(report); err != nil {
		delete(s.clientSessions, address)
		return fmt.Errorf("unable to send report: %w", err)
	}
	return nil
}

func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case message := <-s.clientMessages:
			if err := s.handleMessage(message); err != nil {
				log.Error().Err(err).Str("clientAddress", message.clientAddress).Msg("error handling message")
				s.ReportError(message.clientAddress, err)
			}
		}
	}
}

func (s *Server) handleMessage(message ClientMessage) error {
	switch message.message.GetType() {
	case NewOrder:
		order, ok := message.message.(NewOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		return s.handleNewOrder(message.clientAddress, order)
	case CancelOrder:
		order, ok := message.message.(CancelOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		return s.handleCancelOrder(order)
	case LogBook:
		logBook, ok := message.message.(LogBookMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		depth := s.registry.Book(logBook.AssetType, logBook.Ticker).Depth(10)
		log.Info().
			Str("ticker", logBook.Ticker).
			Any("asks", depth.Asks).
			Any("bids", depth.Bids).
			Msg("book depth")
		return nil
	default:
		log.Error().Int("messageType", int(message.message.GetType())).Msg("invalid message type")
		return ErrInvalidMessageType
	}
}

func (s *Server) handleNewOrder(clientAddress string, msg NewOrderMessage) error {
	order := msg.Order()

	s.sessionsLock.Lock()
	s.ownerAddress[order.Owner] = clientAddress
	s.sessionsLock.Unlock()

	book := s.registry.Book(order.AssetType, order.Ticker)

	var event engine.Event
	switch order.Kind {
	case common.MarketOrder:
		if err := validate.Market(order.ID, order.Side, order.Quantity, book); err != nil {
			return err
		}
		event = book.Execute(engine.Market(order.ID, order.Side, order.Quantity))
	case common.LimitOrder:
		if err := validate.Limit(order.ID, order.Side, order.Quantity, order.LimitPrice, book); err != nil {
			return err
		}
		event = book.Execute(engine.Limit(order.ID, order.Side, order.Quantity, order.LimitPrice))
		if event.Kind == engine.Placed || event.Kind == engine.PartiallyFilled {
			s.trackOwner(order.ID, order.Owner, order.Ticker, order.AssetType)
		}
	default:
		return fmt.Errorf("unsupported order kind: %v", order.Kind)
	}

	s.reportFills(order, event)
	return nil
}

// handleCancelOrder routes the cancel to the book the order was placed
// on. The wire message itself carries no ticker (only an asset type and
// the order id), so
// the ticker is recovered from orderOwners rather than trusted from the
// wire; an id this server never saw placed is a silent no-op, consistent
// with Book.Execute's own idempotent Cancel semantics.
func (s *Server) handleCancelOrder(msg CancelOrderMessage) error {
	owner, ok := s.lookupOwner(msg.OrderID)
	if !ok {
		return nil
	}
	book := s.registry.Book(owner.assetType, owner.ticker)
	book.Execute(engine.Cancel(msg.OrderID))
	s.forgetOwner(msg.OrderID)
	return nil
}

func (s *Server) trackOwner(id uuid.UUID, owner, ticker string, assetType common.AssetType) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.orderOwners[id] = orderOwner{owner: owner, ticker: ticker, assetType: assetType}
}

func (s *Server) forgetOwner(id uuid.UUID) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	delete(s.orderOwners, id)
}

func (s *Server) lookupOwner(id uuid.UUID) (orderOwner, bool) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	owner, ok := s.orderOwners[id]
	return owner, ok
}

// reportFills turns every engine.Fill produced by order into a
// common.Trade addressed to both parties and reports it. The taker's
// owner/ticker come from the order itself; the maker's come from
// orderOwners, populated when that resting order was first placed.
func (s *Server) reportFills(order common.Order, event engine.Event) {
	for _, fill := range event.Fills {
		maker, ok := s.lookupOwner(fill.MakerID)
		makerOwner := maker.owner
		if !ok {
			makerOwner = "" // maker predates this process or bookkeeping was lost; best effort.
		}
		if fill.TotalFill {
			s.forgetOwner(fill.MakerID)
		}

		trade := common.Trade{
			TakerID:     fill.TakerID,
			MakerID:     fill.MakerID,
			TakerOwner:  order.Owner,
			MakerOwner:  makerOwner,
			Ticker:      order.Ticker,
			AssetType:   order.AssetType,
			TakerSide:   fill.TakerSide,
			Timestamp:   time.Now(),
			Qty:         fill.Qty,
			Price:       fill.Price,
			MakerFilled: fill.TotalFill,
		}
		if err := s.ReportFill(trade); err != nil {
			log.Error().Err(err).Str("ticker", order.Ticker).Msg("unable to report fill")
		}
	}
}

// handleConnection reads the next message off conn, hands it to
// sessionHandler, and re-queues the connection for its next message.
// Connection-level failures close the connection and return nil; an error
// returned from here kills the tomb the worker pool runs under, which
// stops the whole server.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Str("address", conn.RemoteAddr().String()).Err(err).Msg("failed setting deadline")
		s.closeConnection(conn)
		return nil
	}

	buffer := make([]byte, MaxRecvSize)
	select {
	case <-t.Dying():
		return nil
	default:
		n, err := conn.Read(buffer)
		if err != nil {
			log.Info().Str("address", conn.RemoteAddr().String()).Err(err).Msg("connection closed")
			s.closeConnection(conn)
			return nil
		}

		message, err := parseMessage(buffer[:n])
		if err != nil {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing message")
			s.closeConnection(conn)
			return nil
		}

		s.clientMessages <- ClientMessage{
			message:       message,
			clientAddress: conn.RemoteAddr().String(),
		}
		s.pool.AddTask(conn)
	}
	return nil
}

func (s *Server) closeConnection(conn net.Conn) {
	s.deleteClientSession(conn.RemoteAddr().String())
	if err := conn.Close(); err != nil {
		log.Error().Str("address", conn.RemoteAddr().String()).Err(err).Msg("error closing connection")
	}
}

func (s *Server) addClientSession(conn net.Conn) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.clientSessions[conn.RemoteAddr().String()] = ClientSession{conn: conn}
}

func (s *Server) deleteClientSession(address string) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	delete(s.clientSessions, address)
}
