package main

import (
	"fmt"
	"net"

	"github.com/opcuax/uachannel/pkg/chunk"
	"github.com/opcuax/uachannel/pkg/securechannel"
	"github.com/opcuax/uachannel/pkg/uaerrors"
	"github.com/opcuax/uachannel/pkg/workerpool"
)

// echoServer is the no-op example server this composition root wires the
// acceptor and demultiplexer to. It satisfies uatransport.Server and, on
// a matched connection, opens a single unencrypted symmetric channel and
// echoes every chunk it encodes back over the wire — enough to exercise
// the full encode path end to end without a decode/session layer, which
// is out of this repository's scope (spec.md Section 1 Non-goals).
type echoServer struct {
	id            string
	endpointURL   string
	discoveryURLs []string
	pool          *workerpool.Pool
}

func newEchoServer(id, endpointURL string, pool *workerpool.Pool) *echoServer {
	return &echoServer{
		id:            id,
		endpointURL:   endpointURL,
		discoveryURLs: []string{endpointURL},
		pool:          pool,
	}
}

func (s *echoServer) ID() string             { return s.id }
func (s *echoServer) EndpointURLs() []string  { return []string{s.endpointURL} }
func (s *echoServer) DiscoveryURLs() []string { return s.discoveryURLs }

// handleConnection opens a channel over conn and encodes a single
// greeting message as a demonstration. A real server would instead run
// the OpenSecureChannel/session layer above this; both are explicitly
// out of scope for this repository (spec.md Section 1).
func (s *echoServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	ch := &securechannel.SecureChannel{
		ChannelID: 1,
		Parameters: securechannel.ChannelParameters{
			LocalSendBufferSize: 8192,
		},
		SignSymmetricEnabled:    false,
		EncryptSymmetricEnabled: false,
	}

	encoder := securechannel.NewChunkEncoder(ch, securechannel.Config{
		SequenceCounter:  chunk.NewSequenceCounter(),
		RequestIDCounter: chunk.NewRequestIDCounter(),
		Pool:             s.pool,
		MaxChunkCount:    16,
	})

	reqID, err := encoder.NextRequestID()
	if err != nil {
		return
	}

	chunks, err := encoder.EncodeSymmetric([]byte("hello from "+s.id), reqID)
	if err != nil {
		abort, abortErr := encoder.EncodeAbort(securechannel.SymmetricDelegate{}, chunk.Message,
			uaerrors.BadSecurityChecksFailed, fmt.Sprintf("encode failed: %v", err), reqID)
		if abortErr == nil {
			conn.Write(abort)
		}
		return
	}

	for _, c := range chunks {
		if _, err := conn.Write(c); err != nil {
			return
		}
	}
}
