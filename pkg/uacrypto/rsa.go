package uacrypto

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // Basic128Rsa15/Basic256 mandate SHA-1 per the OPC-UA profile.
	"crypto/sha256"
	"fmt"

	"github.com/opcuax/uachannel/pkg/workerpool"
)

// RSASigner signs and verifies with RSA PKCS#1 v1.5 using a fixed digest.
// Plaintext block size and ciphertext block size for the *signature* are
// not modeled here; signing always produces one signature over the whole
// chunk, not per block (Section 4.3).
type RSASigner struct {
	hash HashAlgorithm
}

// NewRSASigner creates a signer for the given digest algorithm.
func NewRSASigner(hash HashAlgorithm) *RSASigner {
	return &RSASigner{hash: hash}
}

// SignatureSize returns the RSA signature size in bytes: the modulus size.
func (s *RSASigner) SignatureSize(key *rsa.PrivateKey) int {
	return key.Size()
}

// Sign computes an RSA PKCS#1 v1.5 signature over data using key.
func (s *RSASigner) Sign(key *rsa.PrivateKey, data []byte) ([]byte, error) {
	digest, hashFunc, err := s.digest(data)
	if err != nil {
		return nil, err
	}
	return rsa.SignPKCS1v15(rand.Reader, key, hashFunc, digest)
}

// Verify checks an RSA PKCS#1 v1.5 signature over data using pub.
func (s *RSASigner) Verify(pub *rsa.PublicKey, data, sig []byte) error {
	digest, hashFunc, err := s.digest(data)
	if err != nil {
		return err
	}
	if err := rsa.VerifyPKCS1v15(pub, hashFunc, digest, sig); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}

func (s *RSASigner) digest(data []byte) ([]byte, crypto.Hash, error) {
	switch s.hash {
	case HashSHA1:
		sum := sha1.Sum(data) //nolint:gosec
		return sum[:], crypto.SHA1, nil
	case HashSHA256:
		sum := sha256.Sum256(data)
		return sum[:], crypto.SHA256, nil
	default:
		return nil, 0, ErrUnsupportedAlgo
	}
}

// RSACipher performs block-wise RSA asymmetric encryption. Matter's ECDH
// key agreement has no per-block notion; OPC-UA's asymmetric security
// does, because RSA operates on fixed-size blocks and the spec mandates
// block-wise calls (Section 4.3), so this type's Encrypt loops internally
// rather than exposing a single bulk call.
type RSACipher struct {
	pub       *rsa.PublicKey
	algorithm AsymmetricEncryptionAlgorithm
}

// NewRSACipher creates a cipher that encrypts to the peer's public key
// using the given padding scheme.
func NewRSACipher(pub *rsa.PublicKey, algorithm AsymmetricEncryptionAlgorithm) *RSACipher {
	return &RSACipher{pub: pub, algorithm: algorithm}
}

// PlainTextBlockSize returns the maximum plaintext bytes per RSA operation
// for the configured key size and padding overhead.
func (c *RSACipher) PlainTextBlockSize() int {
	k := c.pub.Size()
	switch c.algorithm {
	case RSA15:
		return k - 11
	case RSAOAEP:
		return k - 2*sha1.Size - 2 //nolint:gosec
	case RSAOAEPSHA256:
		return k - 2*sha256.Size - 2
	default:
		return 0
	}
}

// CipherTextBlockSize returns the RSA modulus size in bytes: every
// operation, regardless of padding, produces exactly one block of this size.
func (c *RSACipher) CipherTextBlockSize() int {
	return c.pub.Size()
}

// Encrypt encrypts src (a multiple of PlainTextBlockSize) into dst (a
// multiple of CipherTextBlockSize), one RSA operation per plaintext block.
func (c *RSACipher) Encrypt(dst, src []byte) error {
	plainBlock := c.PlainTextBlockSize()
	cipherBlock := c.CipherTextBlockSize()
	if plainBlock <= 0 {
		return ErrUnsupportedAlgo
	}
	if len(src)%plainBlock != 0 {
		return fmt.Errorf("uacrypto: src length %d not a multiple of plaintext block size %d", len(src), plainBlock)
	}
	if len(dst) != (len(src)/plainBlock)*cipherBlock {
		return fmt.Errorf("uacrypto: dst length %d does not match expected ciphertext length", len(dst))
	}

	for off := 0; off < len(src); off += plainBlock {
		block := src[off : off+plainBlock]
		var (
			ct  []byte
			err error
		)
		switch c.algorithm {
		case RSA15:
			ct, err = rsa.EncryptPKCS1v15(rand.Reader, c.pub, block)
		case RSAOAEP:
			ct, err = rsa.EncryptOAEP(sha1.New, rand.Reader, c.pub, block, nil) //nolint:gosec
		case RSAOAEPSHA256:
			ct, err = rsa.EncryptOAEP(sha256.New, rand.Reader, c.pub, block, nil)
		default:
			return ErrUnsupportedAlgo
		}
		if err != nil {
			return err
		}
		copy(dst[off/plainBlock*cipherBlock:], ct)
	}
	return nil
}

// EncryptParallel is equivalent to Encrypt but submits each block's RSA
// operation to pool, bounding concurrency while still waiting for every
// block before returning — the chunk this ciphertext belongs to is not
// complete until all of its blocks are, so there is no benefit to
// returning early (Section 5).
func (c *RSACipher) EncryptParallel(pool *workerpool.Pool, dst, src []byte) error {
	plainBlock := c.PlainTextBlockSize()
	cipherBlock := c.CipherTextBlockSize()
	if plainBlock <= 0 {
		return ErrUnsupportedAlgo
	}
	if len(src)%plainBlock != 0 {
		return fmt.Errorf("uacrypto: src length %d not a multiple of plaintext block size %d", len(src), plainBlock)
	}
	if len(dst) != (len(src)/plainBlock)*cipherBlock {
		return fmt.Errorf("uacrypto: dst length %d does not match expected ciphertext length", len(dst))
	}

	blockCount := len(src) / plainBlock
	jobs := make([]workerpool.Job, blockCount)
	for i := 0; i < blockCount; i++ {
		i := i
		jobs[i] = func() error {
			block := src[i*plainBlock : (i+1)*plainBlock]
			var (
				ct  []byte
				err error
			)
			switch c.algorithm {
			case RSA15:
				ct, err = rsa.EncryptPKCS1v15(rand.Reader, c.pub, block)
			case RSAOAEP:
				ct, err = rsa.EncryptOAEP(sha1.New, rand.Reader, c.pub, block, nil) //nolint:gosec
			case RSAOAEPSHA256:
				ct, err = rsa.EncryptOAEP(sha256.New, rand.Reader, c.pub, block, nil)
			default:
				return ErrUnsupportedAlgo
			}
			if err != nil {
				return err
			}
			copy(dst[i*cipherBlock:(i+1)*cipherBlock], ct)
			return nil
		}
	}

	return pool.RunAll(context.Background(), jobs)
}

// RSADecryptBlocks reverses RSACipher.Encrypt given the matching private
// key, decrypting one ciphertext block at a time. Not used by the
// encoder itself (decoding is a separate concern per the spec's
// Non-goals), but it is what a matching decoder or a round-trip test
// uses to verify encode output.
func RSADecryptBlocks(key *rsa.PrivateKey, algorithm AsymmetricEncryptionAlgorithm, ciphertext []byte) ([]byte, error) {
	cipherBlock := key.Size()
	if len(ciphertext)%cipherBlock != 0 {
		return nil, fmt.Errorf("uacrypto: ciphertext length %d not a multiple of block size %d", len(ciphertext), cipherBlock)
	}

	var out []byte
	for off := 0; off < len(ciphertext); off += cipherBlock {
		block := ciphertext[off : off+cipherBlock]
		var (
			pt  []byte
			err error
		)
		switch algorithm {
		case RSA15:
			pt, err = rsa.DecryptPKCS1v15(rand.Reader, key, block)
		case RSAOAEP:
			pt, err = rsa.DecryptOAEP(sha1.New, rand.Reader, key, block, nil) //nolint:gosec
		case RSAOAEPSHA256:
			pt, err = rsa.DecryptOAEP(sha256.New, rand.Reader, key, block, nil)
		default:
			return nil, ErrUnsupportedAlgo
		}
		if err != nil {
			return nil, err
		}
		out = append(out, pt...)
	}
	return out, nil
}
