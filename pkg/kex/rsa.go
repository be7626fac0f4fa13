package kex

import (
	"io"

	"github.com/luxfi/tls12/pkg/herr"
	"github.com/luxfi/tls12/pkg/mpi"
)

const premasterLen = 48

// RSADecrypter is the narrow collaborator contract the RSA key-exchange
// path needs from the server's private key: PKCS#1 v1.5 decryption of
// the encrypted premaster. Decrypt is expected to return an error for
// any padding or length failure — DecryptPremaster folds that failure
// into the Bleichenbacher countermeasure rather than surfacing it.
type RSADecrypter interface {
	Decrypt(rand io.Reader, ciphertext []byte) ([]byte, error)
}

// DecryptPremaster implements RFC 5246 §7.4.7.1's countermeasure against
// the Bleichenbacher padding-oracle attack: regardless of whether
// decryption succeeded, whether the recovered plaintext had the right
// length, or whether its embedded version matches, the function always
// returns a 48-byte value; its only error is a failure to read the fake
// premaster from rng — a fake, rng-sourced
// premaster is substituted byte-for-byte wherever any check failed, and
// the decision of which 48 bytes to keep is made with a constant-time
// mask, never a branch on secret-derived data. The caller must proceed
// to derive a master secret and let the handshake fail later at
// Finished verification, not here.
func DecryptPremaster(key RSADecrypter, rng io.Reader, ciphertext []byte, clientVersionMajor, clientVersionMinor byte) ([]byte, error) {
	fake := make([]byte, premasterLen)
	if _, err := io.ReadFull(rng, fake); err != nil {
		return nil, herr.Wrap(herr.RandomFailed, err)
	}

	peer, decryptErr := key.Decrypt(rng, ciphertext)

	// Build a fixed-length candidate buffer unconditionally: reading
	// peer[0] / peer[1] is only safe once we know len(peer) >= 2, so a
	// too-short or failed decryption is padded with zeros before the
	// byte-wise comparisons below — the padding itself carries no secret
	// information, only the later masked selection does.
	peerPadded := make([]byte, premasterLen)
	lenOK := decryptErr == nil && len(peer) == premasterLen
	if decryptErr == nil && len(peer) > 0 {
		n := len(peer)
		if n > premasterLen {
			n = premasterLen
		}
		copy(peerPadded, peer[:n])
	}

	versionOK := peerPadded[0] == clientVersionMajor && peerPadded[1] == clientVersionMinor

	good := decryptErr == nil && lenOK && versionOK

	out := make([]byte, premasterLen)
	mpi.CtSelectBytes(out, peerPadded, fake, good)
	return out, nil
}
