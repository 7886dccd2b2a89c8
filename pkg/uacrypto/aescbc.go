package uacrypto

import (
	"crypto/aes"
	"crypto/cipher"
)

// AESBlockSize is the AES block size in bytes; both the plaintext and
// ciphertext block sizes for AES-CBC under the symmetric security modes
// this repository supports (Section 4.3: "Entire ciphertext region is
// encrypted as one doFinal call; block boundary is implicit").
const AESBlockSize = aes.BlockSize

// AESCBCCipher encrypts a whole plaintext region in one pass using
// AES-CBC with the given key and IV. Unlike RSACipher, there is no
// per-call RSA-style expansion: plaintext and ciphertext block sizes
// are equal, and the "block-wise" framing in Section 4.3 is an
// implementation detail CBC chaining handles internally.
type AESCBCCipher struct {
	block cipher.Block
	iv    []byte
}

// NewAESCBCCipher creates an AES-CBC cipher. key must be 16 (AES-128) or
// 32 (AES-256) bytes; iv must be AESBlockSize bytes.
func NewAESCBCCipher(key, iv []byte) (*AESCBCCipher, error) {
	if len(key) != 16 && len(key) != 32 {
		return nil, ErrInvalidKeySize
	}
	if len(iv) != AESBlockSize {
		return nil, ErrInvalidIVSize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	ivCopy := make([]byte, len(iv))
	copy(ivCopy, iv)
	return &AESCBCCipher{block: block, iv: ivCopy}, nil
}

// PlainTextBlockSize returns the AES block size.
func (c *AESCBCCipher) PlainTextBlockSize() int { return AESBlockSize }

// CipherTextBlockSize returns the AES block size (CBC does not expand).
func (c *AESCBCCipher) CipherTextBlockSize() int { return AESBlockSize }

// Encrypt encrypts src into dst using CBC chaining from the configured IV.
// src must be a non-zero multiple of AESBlockSize; dst must be the same length.
func (c *AESCBCCipher) Encrypt(dst, src []byte) error {
	if len(src)%AESBlockSize != 0 {
		return ErrInvalidKeySize
	}
	if len(dst) != len(src) {
		return ErrInvalidKeySize
	}
	mode := cipher.NewCBCEncrypter(c.block, c.iv)
	mode.CryptBlocks(dst, src)
	return nil
}

// Decrypt decrypts src into dst using CBC chaining from the configured IV.
func (c *AESCBCCipher) Decrypt(dst, src []byte) error {
	if len(src)%AESBlockSize != 0 || len(dst) != len(src) {
		return ErrInvalidKeySize
	}
	mode := cipher.NewCBCDecrypter(c.block, c.iv)
	mode.CryptBlocks(dst, src)
	return nil
}
