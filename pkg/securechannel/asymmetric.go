package securechannel

import (
	"github.com/opcuax/uachannel/pkg/chunk"
	"github.com/opcuax/uachannel/pkg/uacrypto"
	"github.com/opcuax/uachannel/pkg/uaerrors"
)

// AsymmetricDelegate implements SecurityDelegate for the OpenSecureChannel
// exchange: RSA signing and encryption keyed off the channel's static
// certificate/key-pair fields. It is stateless; every call reads ch
// directly, since asymmetric key material does not roll over within a
// channel's lifetime the way a symmetric token does.
type AsymmetricDelegate struct{}

var _ SecurityDelegate = AsymmetricDelegate{}

// asymmetricContext carries nothing beyond a marker; asymmetric key
// material is read straight off SecureChannel in SignChunk/InitCipher
// because, unlike the symmetric token, it cannot change mid-channel.
type asymmetricContext struct{}

// SecurityHeaderSize returns the encoded AsymmetricSecurityHeader size
// for ch's policy and certificates.
func (AsymmetricDelegate) SecurityHeaderSize(ch *SecureChannel) int {
	h := chunk.AsymmetricSecurityHeader{
		SecurityPolicyURI: ch.Policy.URI,
		SenderCertificate: ch.LocalCertificate,
	}
	if ch.RemoteCertificate != nil {
		h.ReceiverThumbprint = make([]byte, uacrypto.ThumbprintSize)
	}
	return h.Size()
}

// SignatureSize returns the RSA signature size, or 0 when asymmetric
// signing is disabled for ch.
func (AsymmetricDelegate) SignatureSize(ch *SecureChannel) int {
	if !ch.SignAsymmetricEnabled || ch.LocalPrivateKey == nil {
		return 0
	}
	return uacrypto.NewRSASigner(ch.Policy.AsymmetricSignatureHash).SignatureSize(ch.LocalPrivateKey)
}

// PlainTextBlockSize returns the RSA plaintext block size for ch's
// policy, or 1 when asymmetric encryption is disabled.
func (AsymmetricDelegate) PlainTextBlockSize(ch *SecureChannel) int {
	if !ch.EncryptAsymmetricEnabled || ch.RemotePublicKey == nil {
		return 1
	}
	return uacrypto.NewRSACipher(ch.RemotePublicKey, ch.Policy.AsymmetricEncryption).PlainTextBlockSize()
}

// CipherTextBlockSize returns the RSA modulus size for ch's policy, or
// 1 when asymmetric encryption is disabled.
func (AsymmetricDelegate) CipherTextBlockSize(ch *SecureChannel) int {
	if !ch.EncryptAsymmetricEnabled || ch.RemotePublicKey == nil {
		return 1
	}
	return uacrypto.NewRSACipher(ch.RemotePublicKey, ch.Policy.AsymmetricEncryption).CipherTextBlockSize()
}

// EncodeSecurityHeader writes the policy URI, local certificate, and the
// remote certificate's thumbprint into buf.
func (AsymmetricDelegate) EncodeSecurityHeader(ch *SecureChannel, buf []byte) (int, SecurityContext, error) {
	h := chunk.AsymmetricSecurityHeader{
		SecurityPolicyURI: ch.Policy.URI,
		SenderCertificate: ch.LocalCertificate,
	}
	if ch.RemoteCertificate != nil {
		thumb := uacrypto.Thumbprint(ch.RemoteCertificate)
		h.ReceiverThumbprint = thumb[:]
	}
	n := h.EncodeTo(buf)
	return n, asymmetricContext{}, nil
}

// SignChunk signs data with the channel's local private key.
func (AsymmetricDelegate) SignChunk(ch *SecureChannel, _ SecurityContext, data []byte) ([]byte, error) {
	if !ch.SignAsymmetricEnabled {
		return nil, nil
	}
	if ch.LocalPrivateKey == nil {
		return nil, uaerrors.SecurityChecksFailed("asymmetric signing enabled but no local private key configured", nil)
	}
	sig, err := uacrypto.NewRSASigner(ch.Policy.AsymmetricSignatureHash).Sign(ch.LocalPrivateKey, data)
	if err != nil {
		return nil, uaerrors.SecurityChecksFailed("asymmetric sign failed", err)
	}
	return sig, nil
}

// InitCipher returns an RSACipher bound to the peer's public key, or nil
// when asymmetric encryption is disabled.
func (AsymmetricDelegate) InitCipher(ch *SecureChannel, _ SecurityContext) (Cipher, error) {
	if !ch.EncryptAsymmetricEnabled {
		return nil, nil
	}
	if ch.RemotePublicKey == nil {
		return nil, uaerrors.SecurityChecksFailed("asymmetric encryption enabled but no remote public key configured", nil)
	}
	return uacrypto.NewRSACipher(ch.RemotePublicKey, ch.Policy.AsymmetricEncryption), nil
}
