package uatransport

import "errors"

// Transport errors, grounded on the teacher's pkg/transport sentinel set.
var (
	// ErrClosed is returned when an operation is attempted on a closed acceptor.
	ErrClosed = errors.New("uatransport: closed")

	// ErrAlreadyStarted is returned when Start is called on an already running acceptor.
	ErrAlreadyStarted = errors.New("uatransport: already started")

	// ErrNoHelloReader is returned when a SocketAcceptor is built without a HelloReader.
	ErrNoHelloReader = errors.New("uatransport: no HelloReader configured")

	// ErrNoDemultiplexer is returned when a SocketAcceptor is built without an EndpointDemultiplexer.
	ErrNoDemultiplexer = errors.New("uatransport: no EndpointDemultiplexer configured")

	// ErrInvalidEndpointURL reports an unparseable endpoint URL. Register and
	// Lookup do not return it: they use an unparseable URL verbatim as its lookup key.
	ErrInvalidEndpointURL = errors.New("uatransport: invalid endpoint URL")
)
