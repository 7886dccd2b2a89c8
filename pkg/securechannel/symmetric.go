package securechannel

import (
	"github.com/opcuax/uachannel/pkg/chunk"
	"github.com/opcuax/uachannel/pkg/uacrypto"
	"github.com/opcuax/uachannel/pkg/uaerrors"
)

// SymmetricDelegate implements SecurityDelegate for steady-state Message
// traffic: AES-CBC encryption and HMAC signing keyed off the channel's
// current token. EncodeSecurityHeader takes a SecuritySecrets snapshot
// that the same chunk's SignChunk and InitCipher reuse, so a token
// rollover mid-build never splits one chunk between two keys (Section 9).
type SymmetricDelegate struct{}

var _ SecurityDelegate = SymmetricDelegate{}

// SecurityHeaderSize returns the fixed 4-byte token-id header size.
func (SymmetricDelegate) SecurityHeaderSize(*SecureChannel) int {
	return chunk.SymmetricSecurityHeaderSize
}

// SignatureSize returns the HMAC output size for ch's policy, or 0 when
// symmetric signing is disabled.
func (SymmetricDelegate) SignatureSize(ch *SecureChannel) int {
	if !ch.SignSymmetricEnabled {
		return 0
	}
	return uacrypto.NewHMACSigner(ch.Policy.SymmetricSignatureHash).SignatureSize()
}

// PlainTextBlockSize returns the AES block size when symmetric encryption
// is enabled, else 1.
func (SymmetricDelegate) PlainTextBlockSize(ch *SecureChannel) int {
	if !ch.EncryptSymmetricEnabled {
		return 1
	}
	return uacrypto.AESBlockSize
}

// CipherTextBlockSize returns the AES block size when symmetric
// encryption is enabled, else 1 (AES-CBC does not expand).
func (SymmetricDelegate) CipherTextBlockSize(ch *SecureChannel) int {
	if !ch.EncryptSymmetricEnabled {
		return 1
	}
	return uacrypto.AESBlockSize
}

// EncodeSecurityHeader takes a snapshot of the channel's current
// symmetric secrets, writes the token id, and returns the snapshot as
// this chunk's SecurityContext.
func (SymmetricDelegate) EncodeSecurityHeader(ch *SecureChannel, buf []byte) (int, SecurityContext, error) {
	tokenID, secrets := ch.SymmetricSecrets()
	h := chunk.SymmetricSecurityHeader{TokenID: tokenID}
	n := h.EncodeTo(buf)
	return n, secrets, nil
}

// SignChunk signs data with the snapshot's signature key.
func (SymmetricDelegate) SignChunk(ch *SecureChannel, ctx SecurityContext, data []byte) ([]byte, error) {
	if !ch.SignSymmetricEnabled {
		return nil, nil
	}
	secrets, ok := ctx.(SecuritySecrets)
	if !ok {
		return nil, uaerrors.SecurityChecksFailed("symmetric sign called with a mismatched SecurityContext", nil)
	}
	sig, err := uacrypto.NewHMACSigner(ch.Policy.SymmetricSignatureHash).Sign(secrets.SignatureKey, data)
	if err != nil {
		return nil, uaerrors.SecurityChecksFailed("symmetric sign failed", err)
	}
	return sig, nil
}

// InitCipher returns an AES-CBC cipher bound to the snapshot's
// encryption key and IV, or nil when symmetric encryption is disabled.
func (SymmetricDelegate) InitCipher(ch *SecureChannel, ctx SecurityContext) (Cipher, error) {
	if !ch.EncryptSymmetricEnabled {
		return nil, nil
	}
	secrets, ok := ctx.(SecuritySecrets)
	if !ok {
		return nil, uaerrors.SecurityChecksFailed("symmetric cipher init called with a mismatched SecurityContext", nil)
	}
	cipher, err := uacrypto.NewAESCBCCipher(secrets.EncryptionKey, secrets.IV)
	if err != nil {
		return nil, uaerrors.SecurityChecksFailed("symmetric cipher init failed", err)
	}
	return cipher, nil
}
