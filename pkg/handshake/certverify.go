package handshake

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"crypto/x509"

	"github.com/luxfi/tls12/pkg/herr"
)

// CertificateVerifyMessage is the client's proof of possession of the
// private key matching its Certificate message, RFC 5246 §7.4.8.
type CertificateVerifyMessage struct {
	HashAlg   uint8
	SigAlg    uint8
	Signature []byte
}

// ParseCertificateVerify decodes the (hash, sig, length-prefixed
// signature) body.
func ParseCertificateVerify(body []byte) (*CertificateVerifyMessage, error) {
	if len(body) < 4 {
		return nil, fatal(herr.BadHSCertificateVerify, nil)
	}
	hashAlg, sigAlg := body[0], body[1]
	sigLen := int(body[2])<<8 | int(body[3])
	if len(body) != 4+sigLen {
		return nil, fatal(herr.BadHSCertificateVerify, nil)
	}
	return &CertificateVerifyMessage{
		HashAlg:   hashAlg,
		SigAlg:    sigAlg,
		Signature: append([]byte(nil), body[4:4+sigLen]...),
	}, nil
}

// VerifyCertificateVerify checks the client's CertificateVerify signature
// against the transcript hash taken over every handshake message seen so
// far (excluding CertificateVerify itself), using the public key carried
// in the client's leaf certificate. A mismatch, an unparsable leaf, or an
// unsupported (sig, key) pairing is fatal per spec.md §4.3.
func VerifyCertificateVerify(msg *CertificateVerifyMessage, leafDER []byte, transcriptHash []byte) error {
	leaf, err := x509.ParseCertificate(leafDER)
	if err != nil {
		return fatal(herr.BadHSCertificate, err)
	}

	switch msg.SigAlg {
	case SigRSA:
		pub, ok := leaf.PublicKey.(*rsa.PublicKey)
		if !ok {
			return fatal(herr.BadHSCertificateVerify, nil)
		}
		h, err := hashForAlg(msg.HashAlg)
		if err != nil {
			return fatal(herr.BadHSCertificateVerify, err)
		}
		if err := rsa.VerifyPKCS1v15(pub, h, transcriptHash, msg.Signature); err != nil {
			return fatal(herr.VerifyFailed, err)
		}
	case SigECDSA:
		pub, ok := leaf.PublicKey.(*ecdsa.PublicKey)
		if !ok {
			return fatal(herr.BadHSCertificateVerify, nil)
		}
		if !ecdsa.VerifyASN1(pub, transcriptHash, msg.Signature) {
			return fatal(herr.VerifyFailed, nil)
		}
	default:
		return fatal(herr.BadHSCertificateVerify, nil)
	}
	return nil
}

func hashForAlg(alg uint8) (crypto.Hash, error) {
	switch alg {
	case HashSHA1:
		return crypto.SHA1, nil
	case HashSHA256:
		return crypto.SHA256, nil
	case HashSHA384:
		return crypto.SHA384, nil
	case HashSHA512:
		return crypto.SHA512, nil
	default:
		return 0, herr.New(herr.BadHSCertificateVerify)
	}
}
