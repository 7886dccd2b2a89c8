package securechannel

import (
	"github.com/opcuax/uachannel/pkg/workerpool"
)

// SecurityContext is the opaque per-chunk snapshot a delegate's
// EncodeSecurityHeader hands back and its later SignChunk/InitCipher
// calls receive. It exists so the same key material is used for both
// operations on one chunk even if the channel's symmetric token rolls
// over mid-build (Section 9): the snapshot is a value the encoder
// threads explicitly, never a field the delegate mutates and re-reads.
type SecurityContext interface{}

// Cipher is the minimal block-cipher shape both uacrypto.RSACipher and
// uacrypto.AESCBCCipher satisfy: block sizes for geometry, and an
// Encrypt that writes the ciphertext of src into a separate dst.
type Cipher interface {
	PlainTextBlockSize() int
	CipherTextBlockSize() int
	Encrypt(dst, src []byte) error
}

// ParallelCipher is implemented by ciphers whose blocks can be encrypted
// concurrently through a bounded pool (Section 5). Only RSACipher
// implements it; AES-CBC chains blocks and cannot.
type ParallelCipher interface {
	Cipher
	EncryptParallel(pool *workerpool.Pool, dst, src []byte) error
}

// SecurityDelegate is the single seam ChunkEncoder calls through for
// both security modes (Section 9: "a small interface with exactly two
// implementations, not a switch statement or generic parameter").
// AsymmetricDelegate and SymmetricDelegate implement it.
type SecurityDelegate interface {
	// SecurityHeaderSize returns the encoded size of this mode's
	// security header (asymmetric: policy URI + cert + thumbprint,
	// variable; symmetric: token id, fixed 4 bytes).
	SecurityHeaderSize(ch *SecureChannel) int

	// SignatureSize returns the signature length this mode appends, or
	// 0 if signing is disabled for ch.
	SignatureSize(ch *SecureChannel) int

	// PlainTextBlockSize and CipherTextBlockSize return the cipher's
	// block sizes, or (1, 1) if encryption is disabled for ch.
	PlainTextBlockSize(ch *SecureChannel) int
	CipherTextBlockSize(ch *SecureChannel) int

	// EncodeSecurityHeader writes this chunk's security header into
	// buf (which must be at least SecurityHeaderSize(ch) bytes) and
	// returns the bytes written plus the SecurityContext snapshot to
	// use for this chunk's SignChunk/InitCipher calls.
	EncodeSecurityHeader(ch *SecureChannel, buf []byte) (int, SecurityContext, error)

	// SignChunk computes the signature over data using the key
	// material captured in ctx.
	SignChunk(ch *SecureChannel, ctx SecurityContext, data []byte) ([]byte, error)

	// InitCipher returns a Cipher (optionally a ParallelCipher) bound
	// to the key material captured in ctx, or nil if encryption is
	// disabled for ch.
	InitCipher(ch *SecureChannel, ctx SecurityContext) (Cipher, error)
}
