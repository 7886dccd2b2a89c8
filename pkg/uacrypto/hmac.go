package uacrypto

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // Basic128Rsa15/Basic256 mandate HMAC-SHA1 per the OPC-UA profile.
	"crypto/sha256"
	"hash"
)

// HMACSigner signs and verifies with HMAC under a fixed digest algorithm,
// grounded on the teacher's crypto.HMACSHA256 helpers but generalized to
// the two digests the OPC-UA symmetric security policies require.
type HMACSigner struct {
	hash HashAlgorithm
}

// NewHMACSigner creates a signer for the given digest algorithm.
func NewHMACSigner(hash HashAlgorithm) *HMACSigner {
	return &HMACSigner{hash: hash}
}

// SignatureSize returns the HMAC output size for the configured digest.
func (s *HMACSigner) SignatureSize() int {
	switch s.hash {
	case HashSHA1:
		return sha1.Size //nolint:gosec
	case HashSHA256:
		return sha256.Size
	default:
		return 0
	}
}

func (s *HMACSigner) newHash(key []byte) (hash.Hash, error) {
	switch s.hash {
	case HashSHA1:
		return hmac.New(sha1.New, key), nil //nolint:gosec
	case HashSHA256:
		return hmac.New(sha256.New, key), nil
	default:
		return nil, ErrUnsupportedAlgo
	}
}

// Sign computes the HMAC of data under key.
func (s *HMACSigner) Sign(key, data []byte) ([]byte, error) {
	h, err := s.newHash(key)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// Verify checks mac against the HMAC of data under key, in constant time.
func (s *HMACSigner) Verify(key, data, mac []byte) error {
	expected, err := s.Sign(key, data)
	if err != nil {
		return err
	}
	if !hmac.Equal(expected, mac) {
		return ErrSignatureInvalid
	}
	return nil
}
