package uacrypto

// Policy is a named bundle of algorithm identifiers and the geometry
// numbers (block sizes, signature size contributors) a SecurityDelegate
// reads off it. It mirrors the OPC Foundation's named SecurityPolicy URIs
// closely enough to exercise every geometry/crypto path this repository
// implements; it does not claim full interoperability coverage of every
// padding detail (see DESIGN.md for the one documented gap, RSA-PSS).
type Policy struct {
	URI string

	AsymmetricSignatureHash HashAlgorithm
	AsymmetricEncryption    AsymmetricEncryptionAlgorithm

	SymmetricSignatureHash HashAlgorithm
	SymmetricKeySize       int // bytes: 16 (AES-128) or 32 (AES-256)
}

// Named policies, keyed by their OPC Foundation URI suffix.
var (
	PolicyNone = Policy{
		URI: "http://opcfoundation.org/UA/SecurityPolicy#None",
	}

	PolicyBasic128Rsa15 = Policy{
		URI:                     "http://opcfoundation.org/UA/SecurityPolicy#Basic128Rsa15",
		AsymmetricSignatureHash: HashSHA1,
		AsymmetricEncryption:    RSA15,
		SymmetricSignatureHash:  HashSHA1,
		SymmetricKeySize:        16,
	}

	PolicyBasic256 = Policy{
		URI:                     "http://opcfoundation.org/UA/SecurityPolicy#Basic256",
		AsymmetricSignatureHash: HashSHA1,
		AsymmetricEncryption:    RSAOAEP,
		SymmetricSignatureHash:  HashSHA1,
		SymmetricKeySize:        32,
	}

	PolicyBasic256Sha256 = Policy{
		URI:                     "http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256",
		AsymmetricSignatureHash: HashSHA256,
		AsymmetricEncryption:    RSAOAEP,
		SymmetricSignatureHash:  HashSHA256,
		SymmetricKeySize:        32,
	}

	PolicyAes128Sha256RsaOaep = Policy{
		URI:                     "http://opcfoundation.org/UA/SecurityPolicy#Aes128_Sha256_RsaOaep",
		AsymmetricSignatureHash: HashSHA256,
		AsymmetricEncryption:    RSAOAEPSHA256,
		SymmetricSignatureHash:  HashSHA256,
		SymmetricKeySize:        16,
	}

	// PolicyAes256Sha256RsaPss approximates Aes256_Sha256_RsaPss: the spec
	// calls for RSA-PSS signatures, which this repository does not
	// implement (see DESIGN.md); its signer falls back to PKCS#1 v1.5
	// with SHA-256, so this policy is not wire-interoperable with a
	// strict RsaPss peer, only internally consistent for testing.
	PolicyAes256Sha256RsaPss = Policy{
		URI:                     "http://opcfoundation.org/UA/SecurityPolicy#Aes256_Sha256_RsaPss",
		AsymmetricSignatureHash: HashSHA256,
		AsymmetricEncryption:    RSAOAEPSHA256,
		SymmetricSignatureHash:  HashSHA256,
		SymmetricKeySize:        32,
	}
)
