package securechannel

import (
	"encoding/binary"

	"github.com/pion/logging"

	"github.com/opcuax/uachannel/pkg/chunk"
	"github.com/opcuax/uachannel/pkg/uaerrors"
	"github.com/opcuax/uachannel/pkg/workerpool"
)

// Config configures a ChunkEncoder, grounded on the teacher's
// *Config-struct-plus-LoggerFactory convention (see workerpool.Config).
type Config struct {
	// SequenceCounter issues this channel's outbound sequence numbers.
	SequenceCounter *chunk.SequenceCounter

	// RequestIDCounter issues this channel's outbound request ids. One
	// request id is shared by every chunk of a single encoded message.
	RequestIDCounter *chunk.RequestIDCounter

	// Pool, if non-nil, is used to parallelize a chunk's independent
	// asymmetric block encryptions (Section 5). AES-CBC chunks never use
	// it, since CBC chaining is inherently sequential.
	Pool *workerpool.Pool

	// MaxChunkCount bounds how many chunks a single message may split
	// into; 0 means unlimited. Exceeding it is a PayloadTooLarge error.
	MaxChunkCount int

	// LoggerFactory creates the encoder's logger. Nil disables logging.
	LoggerFactory logging.LoggerFactory
}

// ChunkEncoder implements Section 4.4's fragmentation/sign/encrypt
// algorithm for one SecureChannel, dispatching to AsymmetricDelegate or
// SymmetricDelegate depending on which Encode method is called.
type ChunkEncoder struct {
	ch     *SecureChannel
	seq    *chunk.SequenceCounter
	reqID  *chunk.RequestIDCounter
	pool   *workerpool.Pool
	maxCnt int
	log    logging.LeveledLogger
}

// NewChunkEncoder creates an encoder bound to ch.
func NewChunkEncoder(ch *SecureChannel, config Config) *ChunkEncoder {
	e := &ChunkEncoder{
		ch:     ch,
		seq:    config.SequenceCounter,
		reqID:  config.RequestIDCounter,
		pool:   config.Pool,
		maxCnt: config.MaxChunkCount,
	}
	if config.LoggerFactory != nil {
		e.log = config.LoggerFactory.NewLogger("securechannel")
	}
	return e
}

// NextRequestID returns the next outbound request id from the configured
// RequestIDCounter. The Encode methods take the request id as a
// parameter and do not draw from the counter themselves.
func (e *ChunkEncoder) NextRequestID() (uint32, error) {
	return e.reqID.Next()
}

// EncodeAsymmetric fragments, signs, and encrypts body as an
// OpenSecureChannel exchange using AsymmetricDelegate. requestId is
// embedded in every resulting chunk's sequence header, letting the
// caller correlate the exchange with its eventual response; callers
// that need a fresh id can obtain one from NextRequestID first.
func (e *ChunkEncoder) EncodeAsymmetric(body []byte, requestId uint32) ([][]byte, error) {
	return e.encode(AsymmetricDelegate{}, chunk.OpenSecureChannel, body, requestId)
}

// EncodeSymmetric fragments, signs, and encrypts body as steady-state
// Message traffic using SymmetricDelegate. requestId is embedded in
// every resulting chunk's sequence header.
func (e *ChunkEncoder) EncodeSymmetric(body []byte, requestId uint32) ([][]byte, error) {
	return e.encode(SymmetricDelegate{}, chunk.Message, body, requestId)
}

// EncodeAbort builds a single Abort chunk carrying statusCode and reason
// (Section 4.4's abort path), using the delegate appropriate to
// messageType. Returns uaerrors.PayloadTooLarge if the abort body does
// not fit in one chunk.
func (e *ChunkEncoder) EncodeAbort(delegate SecurityDelegate, messageType chunk.MessageType, statusCode uaerrors.StatusCode, reason string, requestId uint32) ([]byte, error) {
	body := encodeAbortBody(statusCode, reason)

	headerSize := delegate.SecurityHeaderSize(e.ch)
	sigSize := delegate.SignatureSize(e.ch)
	plainBlock := delegate.PlainTextBlockSize(e.ch)
	cipherBlock := delegate.CipherTextBlockSize(e.ch)
	encrypted := cipherBlock > 1 || plainBlock > 1

	maxBodySize, err := MaxBodySize(e.ch.Parameters.LocalSendBufferSize, headerSize, sigSize, cipherBlock, plainBlock, encrypted)
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodySize {
		return nil, uaerrors.PayloadTooLarge("abort body does not fit in a single chunk")
	}

	return e.encodeChunk(delegate, messageType, chunk.FinalFlagAbort, body, headerSize, sigSize, plainBlock, cipherBlock, encrypted, requestId)
}

// encodeAbortBody serializes an OPC-UA abort payload: a 4-byte LE status
// code followed by a 4-byte LE length-prefixed reason string.
func encodeAbortBody(statusCode uaerrors.StatusCode, reason string) []byte {
	buf := make([]byte, 4+4+len(reason))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(statusCode))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(reason)))
	copy(buf[8:], reason)
	return buf
}

// encode splits body into chunks of at most the delegate's maxBodySize,
// signing and encrypting each one (Section 4.4). requestId is supplied
// by the caller (spec.md Section 4.4/6.2) and shared by every chunk of
// this message.
func (e *ChunkEncoder) encode(delegate SecurityDelegate, messageType chunk.MessageType, body []byte, requestId uint32) ([][]byte, error) {
	headerSize := delegate.SecurityHeaderSize(e.ch)
	sigSize := delegate.SignatureSize(e.ch)
	plainBlock := delegate.PlainTextBlockSize(e.ch)
	cipherBlock := delegate.CipherTextBlockSize(e.ch)
	encrypted := cipherBlock > 1 || plainBlock > 1

	maxBodySize, err := MaxBodySize(e.ch.Parameters.LocalSendBufferSize, headerSize, sigSize, cipherBlock, plainBlock, encrypted)
	if err != nil {
		return nil, err
	}

	parts := splitBody(body, maxBodySize)

	if e.maxCnt > 0 && len(parts) > e.maxCnt {
		return nil, uaerrors.PayloadTooLarge("message requires more chunks than the configured limit allows")
	}

	out := make([][]byte, 0, len(parts))
	for i, part := range parts {
		final := chunk.FinalFlagIntermediate
		if i == len(parts)-1 {
			final = chunk.FinalFlagFinal
		}

		buf, err := e.encodeChunk(delegate, messageType, final, part, headerSize, sigSize, plainBlock, cipherBlock, encrypted, requestId)
		if err != nil {
			if e.log != nil {
				e.log.Warnf("chunk encode failed: %v", err)
			}
			return nil, err
		}
		out = append(out, buf)
	}

	return out, nil
}

// splitBody breaks body into slices of at most maxBodySize bytes. A
// zero-length body still produces exactly one (empty) part, since every
// message needs at least one chunk.
func splitBody(body []byte, maxBodySize int) [][]byte {
	if len(body) == 0 {
		return [][]byte{body}
	}
	var parts [][]byte
	for off := 0; off < len(body); off += maxBodySize {
		end := off + maxBodySize
		if end > len(body) {
			end = len(body)
		}
		parts = append(parts, body[off:end])
	}
	return parts
}

// encodeChunk builds exactly one wire chunk: header, security header,
// sequence header, body, padding, signature, and (if enabled)
// encryption, per Section 4.4 steps (a)-(j).
//
// The plaintext region (sequence header through padding, then the
// signature) is assembled in a separate scratch buffer rather than in
// place in the final buffer: asymmetric encryption expands each
// plaintext block into a larger ciphertext block, so the final buffer
// (sized to the post-encryption chunk length) cannot hold the
// pre-encryption bytes at the same offsets.
func (e *ChunkEncoder) encodeChunk(
	delegate SecurityDelegate,
	messageType chunk.MessageType,
	final chunk.FinalFlag,
	body []byte,
	headerSize, sigSize, plainBlock, cipherBlock int,
	encrypted bool,
	reqID uint32,
) ([]byte, error) {
	paddingOverhead := 0
	paddingSize := 0
	if encrypted {
		paddingOverhead = chunk.PaddingOverhead(cipherBlock)
		paddingSize = PaddingSize(len(body), sigSize, paddingOverhead, plainBlock)
	}

	plainTextSize := PlainTextContentSize(len(body), sigSize, paddingSize, paddingOverhead)
	if plainTextSize%plainBlock != 0 {
		return nil, uaerrors.InvalidGeometry("plaintext content size is not a multiple of the cipher's plaintext block size")
	}

	chunkSize := ChunkSize(headerSize, plainTextSize, plainBlock, cipherBlock)
	buf := make([]byte, chunkSize)

	msgHeader := chunk.SecureMessageHeader{
		MessageType: messageType,
		FinalFlag:   final,
		ChunkLength: uint32(chunkSize),
		ChannelID:   e.ch.ChannelID,
	}
	msgHeader.EncodeTo(buf)

	secHeaderLen, secCtx, err := delegate.EncodeSecurityHeader(e.ch, buf[chunk.SecureMessageHeaderSize:])
	if err != nil {
		return nil, err
	}
	if secHeaderLen != headerSize {
		return nil, uaerrors.InvalidGeometry("delegate wrote a security header of unexpected size")
	}

	preSigLen := chunk.SequenceHeaderSize + len(body)
	if encrypted {
		preSigLen += paddingSize + paddingOverhead
	}

	plain := make([]byte, plainTextSize)

	seqHeader := chunk.SequenceHeader{
		SequenceNumber: e.seq.Next(),
		RequestID:      reqID,
	}
	seqHeader.EncodeTo(plain)
	copy(plain[chunk.SequenceHeaderSize:], body)

	if encrypted {
		if _, err := chunk.WritePadding(plain[chunk.SequenceHeaderSize+len(body):], paddingSize, paddingOverhead); err != nil {
			return nil, err
		}
	}

	if sigSize > 0 {
		dataOffset := chunk.SecureMessageHeaderSize + headerSize
		signed := make([]byte, 0, dataOffset+preSigLen)
		signed = append(signed, buf[:dataOffset]...)
		signed = append(signed, plain[:preSigLen]...)

		sig, err := delegate.SignChunk(e.ch, secCtx, signed)
		if err != nil {
			return nil, err
		}
		copy(plain[preSigLen:], sig)
	}

	dst := buf[chunk.SecureMessageHeaderSize+headerSize:]

	if !encrypted {
		copy(dst, plain)
		return buf, nil
	}

	cipher, err := delegate.InitCipher(e.ch, secCtx)
	if err != nil {
		return nil, err
	}
	if cipher == nil {
		copy(dst, plain)
		return buf, nil
	}

	if pc, ok := cipher.(ParallelCipher); ok && e.pool != nil {
		if err := pc.EncryptParallel(e.pool, dst, plain); err != nil {
			return nil, uaerrors.SecurityChecksFailed("parallel chunk encryption failed", err)
		}
		return buf, nil
	}

	if err := cipher.Encrypt(dst, plain); err != nil {
		return nil, uaerrors.SecurityChecksFailed("chunk encryption failed", err)
	}
	return buf, nil
}
