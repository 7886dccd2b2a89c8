// Package securechannel implements the hard part of this repository:
// chunk geometry, the asymmetric/symmetric security delegates, and the
// chunk encoder that drives message fragmentation, signing, and
// encryption. It is grounded on the teacher's pkg/securechannel (the
// manager/delegate split, the per-chunk snapshot discipline) and
// pkg/message (header layout, counters), re-targeted from Matter's
// CASE/PASE session establishment to OPC-UA's asymmetric/symmetric
// secure-channel security.
package securechannel

import (
	"crypto/rsa"
	"sync"

	"github.com/opcuax/uachannel/pkg/uacrypto"
)

// ChannelParameters holds the channel-wide, non-cryptographic sizing
// inputs ChunkGeometry consumes (Section 3).
type ChannelParameters struct {
	// LocalSendBufferSize is the maximum number of bytes this side will
	// put on the wire per chunk.
	LocalSendBufferSize int
}

// SecuritySecrets is the symmetric key material a SecureChannel's current
// token carries: the signature key, encryption key, and IV. For
// asymmetric security this type is unused; key material lives directly
// on SecureChannel as a key pair and the peer's public key.
type SecuritySecrets struct {
	SignatureKey  []byte
	EncryptionKey []byte
	IV            []byte
}

// SecureChannel is the caller-owned input the encoder and delegates
// operate on. Only the fields the core encoder path reads are modeled
// here; certificate validation, token renewal, and session state above
// the secure channel are explicitly out of scope (Section 1).
type SecureChannel struct {
	ChannelID  uint32
	Parameters ChannelParameters
	Policy     uacrypto.Policy

	// Asymmetric security material.
	LocalCertificate  []byte // DER, sent as SenderCertificate
	RemoteCertificate []byte // DER, peer's cert; its thumbprint is sent as ReceiverThumbprint
	LocalPrivateKey   *rsa.PrivateKey
	RemotePublicKey   *rsa.PublicKey

	// Enabled flags, independent per security mode (Section 3).
	SignAsymmetricEnabled    bool
	EncryptAsymmetricEnabled bool
	SignSymmetricEnabled     bool
	EncryptSymmetricEnabled  bool

	mu      sync.RWMutex
	tokenID uint32
	secrets SecuritySecrets
}

// SetSymmetricSecrets installs the current symmetric token id and key
// material. Called by the channel's token-renewal logic (external to
// this package); reads of it via SymmetricSecrets are snapshotted so a
// rollover never splits one chunk's keys (Section 4.3, Section 9).
func (c *SecureChannel) SetSymmetricSecrets(tokenID uint32, secrets SecuritySecrets) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenID = tokenID
	c.secrets = secrets
}

// SymmetricSecrets returns a consistent snapshot of the current token id
// and key material.
func (c *SecureChannel) SymmetricSecrets() (uint32, SecuritySecrets) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokenID, c.secrets
}
