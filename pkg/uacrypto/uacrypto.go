// Package uacrypto provides the concrete cryptographic primitives the
// OPC-UA secure-channel encoder invokes through the SecurityProvider
// seam: RSA asymmetric sign/encrypt, AES-CBC symmetric encryption, and
// HMAC/SHA symmetric signing. It is the SecurityProvider implementation
// package securechannel's delegates are built against; it carries no
// knowledge of chunking or wire layout itself.
//
// Structure mirrors the teacher's pkg/crypto: one file per primitive,
// sentinel errors, small table-driven constants. The primitives
// themselves are OPC-UA's (RSA/AES-CBC/HMAC-SHA1/SHA256), not the
// teacher's (ECDH/SPAKE2+/AES-CCM) — see DESIGN.md for why the
// teacher's asymmetric-key-agreement primitives have no home here.
package uacrypto

import "errors"

// Sentinel errors shared across primitives.
var (
	ErrInvalidKeySize   = errors.New("uacrypto: invalid key size")
	ErrInvalidIVSize    = errors.New("uacrypto: invalid IV size")
	ErrSignatureInvalid = errors.New("uacrypto: signature verification failed")
	ErrUnsupportedAlgo  = errors.New("uacrypto: unsupported algorithm")
)

// HashAlgorithm identifies a digest algorithm used for signing.
type HashAlgorithm int

const (
	// HashSHA1 selects SHA-1, used by the Basic128Rsa15/Basic256 policy family.
	HashSHA1 HashAlgorithm = iota
	// HashSHA256 selects SHA-256, used by the Basic256Sha256/Aes*Sha256 policy family.
	HashSHA256
)

// AsymmetricEncryptionAlgorithm identifies the RSA encryption padding scheme.
type AsymmetricEncryptionAlgorithm int

const (
	// RSA15 is RSA PKCS#1 v1.5 encryption (Basic128Rsa15).
	RSA15 AsymmetricEncryptionAlgorithm = iota
	// RSAOAEP is RSA-OAEP with SHA-1 (Basic256, Basic256Sha256).
	RSAOAEP
	// RSAOAEPSHA256 is RSA-OAEP with SHA-256 (Aes128Sha256RsaOaep, Aes256Sha256RsaPss).
	RSAOAEPSHA256
)
