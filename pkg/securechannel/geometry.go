package securechannel

import (
	"github.com/opcuax/uachannel/pkg/chunk"
	"github.com/opcuax/uachannel/pkg/uaerrors"
)

// MaxBodySize computes the largest body a single chunk may carry, given
// the channel's send-buffer limit and the delegate's sizes (Section 4.2).
// All arithmetic is integer; a non-positive result is a configuration
// error, never a silently-truncated chunk.
//
// When encryption is disabled, cipherTextBlockSize and plainTextBlockSize
// should both be 1 (no block expansion applies), matching scenario S1's
// direct chunkSize arithmetic.
func MaxBodySize(localSendBufferSize, securityHeaderSize, signatureSize, cipherTextBlockSize, plainTextBlockSize int, encrypted bool) (int, error) {
	headerSizes := chunk.SecureMessageHeaderSize + securityHeaderSize

	paddingOverhead := 0
	if encrypted {
		paddingOverhead = chunk.PaddingOverhead(cipherTextBlockSize)
	}

	maxBlockCount := (localSendBufferSize - headerSizes - signatureSize - paddingOverhead) / cipherTextBlockSize
	maxBodySize := plainTextBlockSize*maxBlockCount - chunk.SequenceHeaderSize

	if maxBodySize <= 0 {
		return 0, uaerrors.InvalidConfiguration("computed maxBodySize is non-positive for the given channel parameters")
	}

	return maxBodySize, nil
}

// PaddingSize computes the per-chunk padding length for an encrypted
// chunk carrying bodySize bytes of payload (Section 4.2). Only
// meaningful when encryption is enabled; callers must not call this for
// unencrypted chunks (paddingSize is always 0 there, with no padding
// bytes written at all).
func PaddingSize(bodySize, signatureSize, paddingOverhead, plainTextBlockSize int) int {
	used := (chunk.SequenceHeaderSize + bodySize + signatureSize + paddingOverhead) % plainTextBlockSize
	return plainTextBlockSize - used
}

// PlainTextContentSize computes the total plaintext (pre-cipher-expansion)
// size of a chunk's sequence-header-through-signature region.
func PlainTextContentSize(bodySize, signatureSize, paddingSize, paddingOverhead int) int {
	return chunk.SequenceHeaderSize + bodySize + signatureSize + paddingSize + paddingOverhead
}

// ChunkSize computes the total on-wire size of a chunk from its plaintext
// content size and the delegate's block sizes (Section 3).
func ChunkSize(securityHeaderSize, plainTextContentSize, plainTextBlockSize, cipherTextBlockSize int) int {
	blockCount := plainTextContentSize / plainTextBlockSize
	return chunk.SecureMessageHeaderSize + securityHeaderSize + blockCount*cipherTextBlockSize
}
