package uatransport

import (
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/logging"
)

// HelloReader reads the Hello frame's requested endpoint URL off conn.
// This repository does not own the Hello/Ack wire codec (Section 1
// Non-goals); implementations live alongside whatever decode package
// parses OPC-UA TCP messages. It is a seam so SocketAcceptor's
// Hello-to-demux-lookup call site is exercised end-to-end by this
// repository's own tests without depending on a real codec.
type HelloReader interface {
	ReadHello(conn net.Conn) (endpointURL string, err error)
}

// OnMatch is called once a connection's requested endpoint URL resolves
// to a registered Server; ownership of conn passes to the callback,
// which must close it when done.
type OnMatch func(conn net.Conn, srv Server)

// OnMismatch is called when no server matches the requested endpoint
// URL; the acceptor closes conn immediately afterward.
type OnMismatch func(conn net.Conn, endpointURL string, err error)

// AcceptorConfig configures a SocketAcceptor.
type AcceptorConfig struct {
	// Listener is an optional pre-existing listener. If nil, one is
	// created from ListenAddr.
	Listener net.Listener

	// ListenAddr is used to create a listener when Listener is nil
	// (e.g. ":4840"). Empty means an ephemeral port.
	ListenAddr string

	// HelloReader reads the requested endpoint URL off each new
	// connection. Required.
	HelloReader HelloReader

	// Demultiplexer resolves endpoint URLs to servers. Required.
	Demultiplexer *EndpointDemultiplexer

	// OnMatch is called with connections that resolve to a server.
	OnMatch OnMatch

	// OnMismatch is called with connections that resolve to no server;
	// if nil, the acceptor just closes the connection.
	OnMismatch OnMismatch

	// LoggerFactory creates the acceptor's logger. Nil disables logging.
	LoggerFactory logging.LoggerFactory
}

// SocketAcceptor accepts TCP connections, reads each one's Hello-frame
// endpoint URL, and hands matched connections to OnMatch. Grounded on
// the teacher's pkg/transport.TCP: a wrapped net.Listener, a
// connection-tracking map, and an explicit Start/Stop lifecycle guarded
// by a started/closed flag pair.
type SocketAcceptor struct {
	listener    net.Listener
	helloReader HelloReader
	demux       *EndpointDemultiplexer
	onMatch     OnMatch
	onMismatch  OnMismatch
	log         logging.LeveledLogger

	closeCh chan struct{}
	wg      sync.WaitGroup

	connsMu sync.Mutex
	conns   map[string]net.Conn

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewSocketAcceptor creates a SocketAcceptor from config.
func NewSocketAcceptor(config AcceptorConfig) (*SocketAcceptor, error) {
	if config.HelloReader == nil {
		return nil, ErrNoHelloReader
	}
	if config.Demultiplexer == nil {
		return nil, ErrNoDemultiplexer
	}

	a := &SocketAcceptor{
		listener:    config.Listener,
		helloReader: config.HelloReader,
		demux:       config.Demultiplexer,
		onMatch:     config.OnMatch,
		onMismatch:  config.OnMismatch,
		closeCh:     make(chan struct{}),
		conns:       make(map[string]net.Conn),
	}

	if config.LoggerFactory != nil {
		a.log = config.LoggerFactory.NewLogger("uatransport-acceptor")
	}

	if a.listener == nil {
		addr := config.ListenAddr
		if addr == "" {
			addr = ":0"
		}
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		a.listener = listener
	}

	return a, nil
}

// LocalAddr returns the address the acceptor is listening on.
func (a *SocketAcceptor) LocalAddr() net.Addr {
	return a.listener.Addr()
}

// Start begins accepting connections in a background goroutine.
func (a *SocketAcceptor) Start() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.started {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.started = true
	a.mu.Unlock()

	if a.log != nil {
		a.log.Infof("accepting connections on %s", a.listener.Addr())
	}

	a.wg.Add(1)
	go a.acceptLoop()
	return nil
}

// Stop closes the listener and every tracked connection.
func (a *SocketAcceptor) Stop() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.closed = true
	a.mu.Unlock()

	close(a.closeCh)
	a.listener.Close()

	a.connsMu.Lock()
	for _, conn := range a.conns {
		conn.Close()
	}
	a.conns = make(map[string]net.Conn)
	a.connsMu.Unlock()

	a.wg.Wait()
	return nil
}

func (a *SocketAcceptor) acceptLoop() {
	defer a.wg.Done()

	for {
		conn, err := a.listener.Accept()
		if err != nil {
			select {
			case <-a.closeCh:
				return
			default:
				continue
			}
		}

		a.wg.Add(1)
		go a.handleConn(conn)
	}
}

func (a *SocketAcceptor) handleConn(conn net.Conn) {
	defer a.wg.Done()

	key := uuid.NewString()
	a.connsMu.Lock()
	a.conns[key] = conn
	a.connsMu.Unlock()
	defer func() {
		a.connsMu.Lock()
		delete(a.conns, key)
		a.connsMu.Unlock()
	}()

	endpointURL, err := a.helloReader.ReadHello(conn)
	if err != nil {
		if a.log != nil {
			a.log.Warnf("reading Hello from %s: %v", conn.RemoteAddr(), err)
		}
		conn.Close()
		return
	}

	srv, err := a.demux.Lookup(endpointURL)
	if err != nil {
		if a.log != nil {
			a.log.Warnf("no server for endpoint URL %q from %s: %v", endpointURL, conn.RemoteAddr(), err)
		}
		if a.onMismatch != nil {
			a.onMismatch(conn, endpointURL, err)
		}
		conn.Close()
		return
	}

	if a.onMatch != nil {
		a.onMatch(conn, srv)
	} else {
		conn.Close()
	}
}
