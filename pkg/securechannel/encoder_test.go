package securechannel

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	"testing"

	"github.com/opcuax/uachannel/pkg/chunk"
	"github.com/opcuax/uachannel/pkg/uacrypto"
	"github.com/opcuax/uachannel/pkg/uaerrors"
)

func newTestEncoder(ch *SecureChannel) *ChunkEncoder {
	return NewChunkEncoder(ch, Config{
		SequenceCounter:  chunk.NewSequenceCounter(),
		RequestIDCounter: chunk.NewRequestIDCounter(),
	})
}

func TestEncodeSymmetricUnencryptedSignedSingleChunk(t *testing.T) {
	ch := &SecureChannel{
		ChannelID:            7,
		Parameters:           ChannelParameters{LocalSendBufferSize: 8192},
		Policy:               uacrypto.PolicyBasic128Rsa15,
		SignSymmetricEnabled: true,
	}
	ch.SetSymmetricSecrets(1, SecuritySecrets{SignatureKey: []byte("shared-signature-key")})

	enc := newTestEncoder(ch)
	body := bytes.Repeat([]byte{0xAB}, 100)

	reqID, err := enc.NextRequestID()
	if err != nil {
		t.Fatalf("NextRequestID: %v", err)
	}
	chunks, err := enc.EncodeSymmetric(body, reqID)
	if err != nil {
		t.Fatalf("EncodeSymmetric: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}

	buf := chunks[0]
	if len(buf) != 144 {
		t.Fatalf("chunk size = %d, want 144 (Section 8 scenario S1)", len(buf))
	}

	hdr, n, err := chunk.DecodeSecureMessageHeader(buf)
	if err != nil {
		t.Fatalf("DecodeSecureMessageHeader: %v", err)
	}
	if hdr.MessageType != chunk.Message {
		t.Errorf("MessageType = %v, want Message", hdr.MessageType)
	}
	if hdr.FinalFlag != chunk.FinalFlagFinal {
		t.Errorf("FinalFlag = %v, want F", hdr.FinalFlag)
	}
	if hdr.ChunkLength != uint32(len(buf)) {
		t.Errorf("ChunkLength = %d, want %d", hdr.ChunkLength, len(buf))
	}
	if hdr.ChannelID != 7 {
		t.Errorf("ChannelID = %d, want 7", hdr.ChannelID)
	}

	secHdr, n2, err := chunk.DecodeSymmetricSecurityHeader(buf[n:])
	if err != nil {
		t.Fatalf("DecodeSymmetricSecurityHeader: %v", err)
	}
	if secHdr.TokenID != 1 {
		t.Errorf("TokenID = %d, want 1", secHdr.TokenID)
	}

	preSigEnd := n + n2 + chunk.SequenceHeaderSize + len(body)
	signed := buf[:preSigEnd]
	sig := buf[preSigEnd:]

	signer := uacrypto.NewHMACSigner(uacrypto.HashSHA1)
	if err := signer.Verify([]byte("shared-signature-key"), signed, sig); err != nil {
		t.Errorf("signature verification failed: %v", err)
	}

	seqHdr, _, err := chunk.DecodeSequenceHeader(buf[n+n2:])
	if err != nil {
		t.Fatalf("DecodeSequenceHeader: %v", err)
	}
	if seqHdr.SequenceNumber != 1 {
		t.Errorf("SequenceNumber = %d, want 1 (first chunk of a fresh counter)", seqHdr.SequenceNumber)
	}

	gotBody := buf[n+n2+chunk.SequenceHeaderSize : preSigEnd]
	if !bytes.Equal(gotBody, body) {
		t.Error("decoded body does not match the encoded body")
	}
}

func TestEncodeSymmetricEncryptedMultiChunk(t *testing.T) {
	ch := &SecureChannel{
		ChannelID:               9,
		Parameters:              ChannelParameters{LocalSendBufferSize: 512},
		Policy:                  uacrypto.PolicyAes128Sha256RsaOaep,
		SignSymmetricEnabled:    true,
		EncryptSymmetricEnabled: true,
	}
	key := bytes.Repeat([]byte{0x11}, 16)
	iv := bytes.Repeat([]byte{0x22}, uacrypto.AESBlockSize)
	sigKey := bytes.Repeat([]byte{0x33}, 32)
	ch.SetSymmetricSecrets(42, SecuritySecrets{SignatureKey: sigKey, EncryptionKey: key, IV: iv})

	delegate := SymmetricDelegate{}
	headerSize := delegate.SecurityHeaderSize(ch)
	sigSize := delegate.SignatureSize(ch)
	plainBlock := delegate.PlainTextBlockSize(ch)
	cipherBlock := delegate.CipherTextBlockSize(ch)

	maxBodySize, err := MaxBodySize(ch.Parameters.LocalSendBufferSize, headerSize, sigSize, cipherBlock, plainBlock, true)
	if err != nil {
		t.Fatalf("MaxBodySize: %v", err)
	}

	body := bytes.Repeat([]byte{0xCD}, maxBodySize+50)
	wantParts := splitBody(body, maxBodySize)
	if len(wantParts) != 2 {
		t.Fatalf("test setup: body split into %d parts, want 2", len(wantParts))
	}

	enc := newTestEncoder(ch)
	reqID, err := enc.NextRequestID()
	if err != nil {
		t.Fatalf("NextRequestID: %v", err)
	}
	chunks, err := enc.EncodeSymmetric(body, reqID)
	if err != nil {
		t.Fatalf("EncodeSymmetric: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2", len(chunks))
	}

	var lastSeq uint32
	var sawRequestID uint32
	for i, buf := range chunks {
		hdr, n, err := chunk.DecodeSecureMessageHeader(buf)
		if err != nil {
			t.Fatalf("chunk %d: DecodeSecureMessageHeader: %v", i, err)
		}
		wantFlag := chunk.FinalFlagIntermediate
		if i == len(chunks)-1 {
			wantFlag = chunk.FinalFlagFinal
		}
		if hdr.FinalFlag != wantFlag {
			t.Errorf("chunk %d: FinalFlag = %v, want %v", i, hdr.FinalFlag, wantFlag)
		}
		if hdr.ChunkLength != uint32(len(buf)) {
			t.Errorf("chunk %d: ChunkLength = %d, want %d", i, hdr.ChunkLength, len(buf))
		}

		secHdr, n2, err := chunk.DecodeSymmetricSecurityHeader(buf[n:])
		if err != nil {
			t.Fatalf("chunk %d: DecodeSymmetricSecurityHeader: %v", i, err)
		}
		if secHdr.TokenID != 42 {
			t.Errorf("chunk %d: TokenID = %d, want 42", i, secHdr.TokenID)
		}

		cipherText := buf[n+n2:]
		aes, err := uacrypto.NewAESCBCCipher(key, iv)
		if err != nil {
			t.Fatalf("NewAESCBCCipher: %v", err)
		}
		plain := make([]byte, len(cipherText))
		if err := aes.Decrypt(plain, cipherText); err != nil {
			t.Fatalf("chunk %d: Decrypt: %v", i, err)
		}

		seqHdr, _, err := chunk.DecodeSequenceHeader(plain)
		if err != nil {
			t.Fatalf("chunk %d: DecodeSequenceHeader: %v", i, err)
		}
		if i == 0 {
			lastSeq = seqHdr.SequenceNumber
		} else if seqHdr.SequenceNumber != lastSeq+1 {
			t.Errorf("chunk %d: SequenceNumber = %d, want %d", i, seqHdr.SequenceNumber, lastSeq+1)
		}

		bodyLen := len(wantParts[i])
		gotBody := plain[chunk.SequenceHeaderSize : chunk.SequenceHeaderSize+bodyLen]
		if !bytes.Equal(gotBody, wantParts[i]) {
			t.Errorf("chunk %d: decrypted body does not match the expected part", i)
		}

		paddingOverhead := chunk.PaddingOverhead(cipherBlock)
		paddingSize := PaddingSize(bodyLen, sigSize, paddingOverhead, plainBlock)
		preSigLen := chunk.SequenceHeaderSize + bodyLen + paddingSize + paddingOverhead
		sig := plain[preSigLen : preSigLen+sigSize]

		signed := make([]byte, 0, n+n2+preSigLen)
		signed = append(signed, buf[:n+n2]...)
		signed = append(signed, plain[:preSigLen]...)

		signer := uacrypto.NewHMACSigner(uacrypto.HashSHA256)
		if err := signer.Verify(sigKey, signed, sig); err != nil {
			t.Errorf("chunk %d: signature verification failed: %v", i, err)
		}

		if i == 0 {
			reqHdr, _, _ := chunk.DecodeSequenceHeader(plain)
			sawRequestID = reqHdr.RequestID
		} else {
			reqHdr, _, _ := chunk.DecodeSequenceHeader(plain)
			if reqHdr.RequestID != sawRequestID {
				t.Errorf("chunk %d: RequestID = %d, want %d (same request id across chunks)", i, reqHdr.RequestID, sawRequestID)
			}
		}
	}
}

func TestEncodeAsymmetricSignedAndEncrypted(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	ch := &SecureChannel{
		ChannelID:                3,
		Parameters:               ChannelParameters{LocalSendBufferSize: 8192},
		Policy:                   uacrypto.PolicyBasic256,
		LocalCertificate:         []byte("local-certificate-der-bytes"),
		RemoteCertificate:        []byte("remote-certificate-der-bytes"),
		LocalPrivateKey:          priv,
		RemotePublicKey:          &priv.PublicKey,
		SignAsymmetricEnabled:    true,
		EncryptAsymmetricEnabled: true,
	}

	enc := newTestEncoder(ch)
	body := bytes.Repeat([]byte{0x5A}, 50)

	reqID, err := enc.NextRequestID()
	if err != nil {
		t.Fatalf("NextRequestID: %v", err)
	}
	chunks, err := enc.EncodeAsymmetric(body, reqID)
	if err != nil {
		t.Fatalf("EncodeAsymmetric: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	buf := chunks[0]

	hdr, n, err := chunk.DecodeSecureMessageHeader(buf)
	if err != nil {
		t.Fatalf("DecodeSecureMessageHeader: %v", err)
	}
	if hdr.MessageType != chunk.OpenSecureChannel {
		t.Errorf("MessageType = %v, want OpenSecureChannel", hdr.MessageType)
	}
	if hdr.FinalFlag != chunk.FinalFlagFinal {
		t.Errorf("FinalFlag = %v, want F", hdr.FinalFlag)
	}

	secHdr, n2, err := chunk.DecodeAsymmetricSecurityHeader(buf[n:])
	if err != nil {
		t.Fatalf("DecodeAsymmetricSecurityHeader: %v", err)
	}
	if secHdr.SecurityPolicyURI != uacrypto.PolicyBasic256.URI {
		t.Errorf("SecurityPolicyURI = %q, want %q", secHdr.SecurityPolicyURI, uacrypto.PolicyBasic256.URI)
	}
	if !bytes.Equal(secHdr.SenderCertificate, ch.LocalCertificate) {
		t.Error("SenderCertificate does not match LocalCertificate")
	}
	wantThumb := uacrypto.Thumbprint(ch.RemoteCertificate)
	if !bytes.Equal(secHdr.ReceiverThumbprint, wantThumb[:]) {
		t.Error("ReceiverThumbprint does not match the remote certificate's thumbprint")
	}

	cipherText := buf[n+n2:]
	plain, err := uacrypto.RSADecryptBlocks(priv, uacrypto.RSAOAEP, cipherText)
	if err != nil {
		t.Fatalf("RSADecryptBlocks: %v", err)
	}

	seqHdr, _, err := chunk.DecodeSequenceHeader(plain)
	if err != nil {
		t.Fatalf("DecodeSequenceHeader: %v", err)
	}
	if seqHdr.SequenceNumber != 1 {
		t.Errorf("SequenceNumber = %d, want 1", seqHdr.SequenceNumber)
	}

	gotBody := plain[chunk.SequenceHeaderSize : chunk.SequenceHeaderSize+len(body)]
	if !bytes.Equal(gotBody, body) {
		t.Error("decrypted body does not match the encoded body")
	}

	sigSize := priv.Size()
	preSigLen := len(plain) - sigSize
	sig := plain[preSigLen:]
	signed := make([]byte, 0, n+n2+preSigLen)
	signed = append(signed, buf[:n+n2]...)
	signed = append(signed, plain[:preSigLen]...)

	signer := uacrypto.NewRSASigner(uacrypto.HashSHA1)
	if err := signer.Verify(&priv.PublicKey, signed, sig); err != nil {
		t.Errorf("signature verification failed: %v", err)
	}
}

func TestEncodeAbortProducesSingleAbortChunk(t *testing.T) {
	ch := &SecureChannel{
		ChannelID:            1,
		Parameters:           ChannelParameters{LocalSendBufferSize: 8192},
		Policy:               uacrypto.PolicyBasic128Rsa15,
		SignSymmetricEnabled: true,
	}
	ch.SetSymmetricSecrets(1, SecuritySecrets{SignatureKey: []byte("abort-signature-key")})

	enc := newTestEncoder(ch)
	reqID, err := enc.NextRequestID()
	if err != nil {
		t.Fatalf("NextRequestID: %v", err)
	}
	buf, err := enc.EncodeAbort(SymmetricDelegate{}, chunk.Message, uaerrors.BadTcpInternalError, "too many chunks", reqID)
	if err != nil {
		t.Fatalf("EncodeAbort: %v", err)
	}

	hdr, n, err := chunk.DecodeSecureMessageHeader(buf)
	if err != nil {
		t.Fatalf("DecodeSecureMessageHeader: %v", err)
	}
	if hdr.FinalFlag != chunk.FinalFlagAbort {
		t.Errorf("FinalFlag = %v, want A", hdr.FinalFlag)
	}

	_, n2, err := chunk.DecodeSymmetricSecurityHeader(buf[n:])
	if err != nil {
		t.Fatalf("DecodeSymmetricSecurityHeader: %v", err)
	}

	bodyOffset := n + n2 + chunk.SequenceHeaderSize
	gotStatus := binary.LittleEndian.Uint32(buf[bodyOffset : bodyOffset+4])
	if uaerrors.StatusCode(gotStatus) != uaerrors.BadTcpInternalError {
		t.Errorf("status code = 0x%08X, want 0x%08X", gotStatus, uint32(uaerrors.BadTcpInternalError))
	}
	reasonLen := binary.LittleEndian.Uint32(buf[bodyOffset+4 : bodyOffset+8])
	gotReason := string(buf[bodyOffset+8 : bodyOffset+8+int(reasonLen)])
	if gotReason != "too many chunks" {
		t.Errorf("reason = %q, want %q", gotReason, "too many chunks")
	}
}

func TestEncodeSymmetricMaxChunkCountExceeded(t *testing.T) {
	ch := &SecureChannel{
		ChannelID:  1,
		Parameters: ChannelParameters{LocalSendBufferSize: 64},
	}
	ch.SetSymmetricSecrets(1, SecuritySecrets{})

	enc := NewChunkEncoder(ch, Config{
		SequenceCounter:  chunk.NewSequenceCounter(),
		RequestIDCounter: chunk.NewRequestIDCounter(),
		MaxChunkCount:    1,
	})

	reqID, err := enc.NextRequestID()
	if err != nil {
		t.Fatalf("NextRequestID: %v", err)
	}
	body := bytes.Repeat([]byte{0x01}, 200)
	if _, err := enc.EncodeSymmetric(body, reqID); err == nil {
		t.Fatal("expected a PayloadTooLarge error")
	}
}
