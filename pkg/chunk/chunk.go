// Package chunk implements the OPC-UA TCP secure-channel wire format: the
// fixed-layout headers every chunk carries, the sequence/request-id
// counters, and the padding byte layout. It owns encoding and decoding of
// those layouts only; sizing decisions (how big a chunk's body may be,
// how much padding it needs) live in package securechannel, which
// consumes these types.
package chunk

import (
	"encoding/binary"
	"errors"
)

// Wire-format sizes (Section 6.1).
const (
	// SecureMessageHeaderSize is the fixed 12-byte header every chunk starts with.
	SecureMessageHeaderSize = 12

	// SequenceHeaderSize is the fixed 8-byte sequence header.
	SequenceHeaderSize = 8

	// SymmetricSecurityHeaderSize is the fixed 4-byte symmetric security header (token id).
	SymmetricSecurityHeaderSize = 4

	// ThumbprintSize is the SHA-1 thumbprint size carried in the asymmetric security header.
	ThumbprintSize = 20
)

var (
	// ErrMessageTooShort is returned when decoding a buffer shorter than a header requires.
	ErrMessageTooShort = errors.New("chunk: data too short")

	// ErrInvalidMessageType is returned when a 3-byte message type tag is unrecognized.
	ErrInvalidMessageType = errors.New("chunk: invalid message type tag")

	// ErrInvalidFinalFlag is returned when the final-flag byte is not 'C', 'F', or 'A'.
	ErrInvalidFinalFlag = errors.New("chunk: invalid final flag")
)

// MessageType is the 3-byte ASCII tag identifying the secure-channel message kind.
type MessageType uint8

const (
	// OpenSecureChannel is the "OPN" message type, used for channel-open.
	OpenSecureChannel MessageType = iota
	// CloseSecureChannel is the "CLO" message type.
	CloseSecureChannel
	// Message is the "MSG" message type, used for steady-state traffic.
	Message
)

var messageTypeTags = map[MessageType][3]byte{
	OpenSecureChannel:  {'O', 'P', 'N'},
	CloseSecureChannel: {'C', 'L', 'O'},
	Message:            {'M', 'S', 'G'},
}

var tagToMessageType = map[[3]byte]MessageType{
	{'O', 'P', 'N'}: OpenSecureChannel,
	{'C', 'L', 'O'}: CloseSecureChannel,
	{'M', 'S', 'G'}: Message,
}

// Tag returns the 3-byte wire tag for this message type.
func (m MessageType) Tag() [3]byte {
	tag, ok := messageTypeTags[m]
	if !ok {
		return [3]byte{'?', '?', '?'}
	}
	return tag
}

// String returns a human-readable name for the message type.
func (m MessageType) String() string {
	switch m {
	case OpenSecureChannel:
		return "OpenSecureChannel"
	case CloseSecureChannel:
		return "CloseSecureChannel"
	case Message:
		return "Message"
	default:
		return "Unknown"
	}
}

// ParseMessageType decodes a 3-byte wire tag into a MessageType.
func ParseMessageType(tag [3]byte) (MessageType, error) {
	mt, ok := tagToMessageType[tag]
	if !ok {
		return 0, ErrInvalidMessageType
	}
	return mt, nil
}

// FinalFlag distinguishes intermediate, final, and abort chunks (Section 4.4).
type FinalFlag byte

const (
	// FinalFlagIntermediate ('C') marks a chunk with more chunks to follow.
	FinalFlagIntermediate FinalFlag = 'C'
	// FinalFlagFinal ('F') marks the last chunk of a normal message.
	FinalFlagFinal FinalFlag = 'F'
	// FinalFlagAbort ('A') marks a one-chunk abort message.
	FinalFlagAbort FinalFlag = 'A'
)

// IsValid reports whether f is one of the three defined flag values.
func (f FinalFlag) IsValid() bool {
	switch f {
	case FinalFlagIntermediate, FinalFlagFinal, FinalFlagAbort:
		return true
	default:
		return false
	}
}

// SecureMessageHeader is the 12-byte header at offset 0 of every chunk.
type SecureMessageHeader struct {
	MessageType MessageType
	FinalFlag   FinalFlag
	ChunkLength uint32 // total chunk size, including this header
	ChannelID   uint32
}

// EncodeTo writes the header into buf, which must be at least SecureMessageHeaderSize bytes.
func (h *SecureMessageHeader) EncodeTo(buf []byte) int {
	tag := h.MessageType.Tag()
	copy(buf[0:3], tag[:])
	buf[3] = byte(h.FinalFlag)
	binary.LittleEndian.PutUint32(buf[4:8], h.ChunkLength)
	binary.LittleEndian.PutUint32(buf[8:12], h.ChannelID)
	return SecureMessageHeaderSize
}

// DecodeSecureMessageHeader reads a SecureMessageHeader from data.
// Returns the header and the number of bytes consumed.
func DecodeSecureMessageHeader(data []byte) (SecureMessageHeader, int, error) {
	var h SecureMessageHeader
	if len(data) < SecureMessageHeaderSize {
		return h, 0, ErrMessageTooShort
	}

	var tag [3]byte
	copy(tag[:], data[0:3])
	mt, err := ParseMessageType(tag)
	if err != nil {
		return h, 0, err
	}
	h.MessageType = mt

	flag := FinalFlag(data[3])
	if !flag.IsValid() {
		return h, 0, ErrInvalidFinalFlag
	}
	h.FinalFlag = flag

	h.ChunkLength = binary.LittleEndian.Uint32(data[4:8])
	h.ChannelID = binary.LittleEndian.Uint32(data[8:12])

	return h, SecureMessageHeaderSize, nil
}

// SequenceHeader is the 8-byte sequence/request-id header following the security header.
type SequenceHeader struct {
	SequenceNumber uint32
	RequestID      uint32
}

// EncodeTo writes the sequence header into buf, which must be at least SequenceHeaderSize bytes.
func (s *SequenceHeader) EncodeTo(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], s.SequenceNumber)
	binary.LittleEndian.PutUint32(buf[4:8], s.RequestID)
	return SequenceHeaderSize
}

// DecodeSequenceHeader reads a SequenceHeader from data.
func DecodeSequenceHeader(data []byte) (SequenceHeader, int, error) {
	var s SequenceHeader
	if len(data) < SequenceHeaderSize {
		return s, 0, ErrMessageTooShort
	}
	s.SequenceNumber = binary.LittleEndian.Uint32(data[0:4])
	s.RequestID = binary.LittleEndian.Uint32(data[4:8])
	return s, SequenceHeaderSize, nil
}

// SymmetricSecurityHeader is the 4-byte token-id header used under symmetric security.
type SymmetricSecurityHeader struct {
	TokenID uint32
}

// EncodeTo writes the token id into buf, which must be at least SymmetricSecurityHeaderSize bytes.
func (s *SymmetricSecurityHeader) EncodeTo(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], s.TokenID)
	return SymmetricSecurityHeaderSize
}

// DecodeSymmetricSecurityHeader reads a SymmetricSecurityHeader from data.
func DecodeSymmetricSecurityHeader(data []byte) (SymmetricSecurityHeader, int, error) {
	var s SymmetricSecurityHeader
	if len(data) < SymmetricSecurityHeaderSize {
		return s, 0, ErrMessageTooShort
	}
	s.TokenID = binary.LittleEndian.Uint32(data[0:4])
	return s, SymmetricSecurityHeaderSize, nil
}

// AsymmetricSecurityHeader carries the policy URI, sender certificate, and
// receiver-certificate thumbprint under asymmetric security (Section 3).
type AsymmetricSecurityHeader struct {
	SecurityPolicyURI      string
	SenderCertificate      []byte // DER, nil when the policy carries no certificate
	ReceiverThumbprint     []byte // SHA-1 thumbprint, nil when absent
}

// Size returns the encoded size of the header in bytes.
func (h *AsymmetricSecurityHeader) Size() int {
	return 4 + len(h.SecurityPolicyURI) + 4 + len(h.SenderCertificate) + 4 + len(h.ReceiverThumbprint)
}

// EncodeTo writes the header into buf, which must be at least Size() bytes.
// Length-prefixed fields use LE i32 lengths; a nil byte slice or empty string
// that the caller intends as "absent" is written with length -1 per Section 6.1.
func (h *AsymmetricSecurityHeader) EncodeTo(buf []byte) int {
	offset := 0
	offset += putLengthPrefixedString(buf[offset:], h.SecurityPolicyURI)
	offset += putLengthPrefixedBytes(buf[offset:], h.SenderCertificate)
	offset += putLengthPrefixedBytes(buf[offset:], h.ReceiverThumbprint)
	return offset
}

func putLengthPrefixedString(buf []byte, s string) int {
	if s == "" {
		binary.LittleEndian.PutUint32(buf[0:4], 0xFFFFFFFF)
		return 4
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(s)))
	n := copy(buf[4:], s)
	return 4 + n
}

func putLengthPrefixedBytes(buf []byte, b []byte) int {
	if b == nil {
		binary.LittleEndian.PutUint32(buf[0:4], 0xFFFFFFFF)
		return 4
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(b)))
	n := copy(buf[4:], b)
	return 4 + n
}

// DecodeAsymmetricSecurityHeader reads an AsymmetricSecurityHeader from data.
func DecodeAsymmetricSecurityHeader(data []byte) (AsymmetricSecurityHeader, int, error) {
	var h AsymmetricSecurityHeader
	offset := 0

	uri, n, err := readLengthPrefixedString(data[offset:])
	if err != nil {
		return h, 0, err
	}
	h.SecurityPolicyURI = uri
	offset += n

	cert, n, err := readLengthPrefixedBytes(data[offset:])
	if err != nil {
		return h, 0, err
	}
	h.SenderCertificate = cert
	offset += n

	thumb, n, err := readLengthPrefixedBytes(data[offset:])
	if err != nil {
		return h, 0, err
	}
	h.ReceiverThumbprint = thumb
	offset += n

	return h, offset, nil
}

func readLengthPrefixedString(data []byte) (string, int, error) {
	b, n, err := readLengthPrefixedBytes(data)
	if err != nil {
		return "", 0, err
	}
	if b == nil {
		return "", n, nil
	}
	return string(b), n, nil
}

func readLengthPrefixedBytes(data []byte) ([]byte, int, error) {
	if len(data) < 4 {
		return nil, 0, ErrMessageTooShort
	}
	length := int32(binary.LittleEndian.Uint32(data[0:4]))
	if length < 0 {
		return nil, 4, nil
	}
	if len(data) < 4+int(length) {
		return nil, 0, ErrMessageTooShort
	}
	out := make([]byte, length)
	copy(out, data[4:4+int(length)])
	return out, 4 + int(length), nil
}
