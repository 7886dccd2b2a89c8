package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
)

// errHelloTooShort is returned when a Hello chunk is shorter than its
// fixed fields require.
var errHelloTooShort = errors.New("uachannel-server: HEL chunk too short")

// demoHelloReader is a minimal implementation of uatransport.HelloReader.
// The OPC-UA Hello/Acknowledge handshake codec itself is explicitly out
// of this repository's scope (spec.md Section 1 Non-goals); this is just
// enough of the wire format — the "HEL" tag, the fixed numeric fields,
// and the length-prefixed endpoint URL string — to demonstrate the
// HelloReader seam SocketAcceptor calls before a demultiplexer lookup.
type demoHelloReader struct{}

func (demoHelloReader) ReadHello(conn net.Conn) (string, error) {
	header := make([]byte, 8)
	if _, err := readFull(conn, header); err != nil {
		return "", fmt.Errorf("read HEL header: %w", err)
	}
	if string(header[0:3]) != "HEL" {
		return "", fmt.Errorf("uachannel-server: expected HEL tag, got %q", header[0:3])
	}
	chunkLength := binary.LittleEndian.Uint32(header[4:8])
	if chunkLength < 8+16+4 {
		return "", errHelloTooShort
	}

	body := make([]byte, chunkLength-8)
	if _, err := readFull(conn, body); err != nil {
		return "", fmt.Errorf("read HEL body: %w", err)
	}
	// body layout: protocolVersion, receiveBufferSize, sendBufferSize,
	// maxMessageSize, maxChunkCount (4 bytes each), then a length-prefixed
	// endpoint URL string.
	if len(body) < 20+4 {
		return "", errHelloTooShort
	}
	urlLen := binary.LittleEndian.Uint32(body[20:24])
	if urlLen == 0xFFFFFFFF {
		return "", nil
	}
	start := 24
	end := start + int(urlLen)
	if end > len(body) {
		return "", errHelloTooShort
	}
	return string(body[start:end]), nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
