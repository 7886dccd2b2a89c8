package uacrypto

import "crypto/sha1" //nolint:gosec // OPC-UA certificate thumbprints are specified as SHA-1.

// ThumbprintSize is the size of an OPC-UA certificate thumbprint in bytes.
const ThumbprintSize = sha1.Size

// Thumbprint computes the SHA-1 thumbprint of a DER-encoded certificate,
// as carried in the AsymmetricSecurityHeader's receiver-thumbprint field.
func Thumbprint(certDER []byte) [ThumbprintSize]byte {
	return sha1.Sum(certDER) //nolint:gosec
}
