package handshake

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCertificateVerifyRoundTrip(t *testing.T) {
	leafDER, priv := makeTestECDSACert(t)
	transcriptHash := []byte("a stand-in transcript hash, 32 bytes long!!")

	sig, err := (&fakeECDSAKey{priv: priv}).Sign(rand.Reader, transcriptHash, HashSHA256, SigECDSA)
	require.NoError(t, err)

	body := []byte{HashSHA256, SigECDSA, byte(len(sig) >> 8), byte(len(sig))}
	body = append(body, sig...)

	msg, err := ParseCertificateVerify(body)
	require.NoError(t, err)
	require.Equal(t, uint8(HashSHA256), msg.HashAlg)
	require.Equal(t, uint8(SigECDSA), msg.SigAlg)

	require.NoError(t, VerifyCertificateVerify(msg, leafDER, transcriptHash))
}

func TestCertificateVerifyRejectsWrongTranscript(t *testing.T) {
	leafDER, priv := makeTestECDSACert(t)
	transcriptHash := []byte("a stand-in transcript hash, 32 bytes long!!")

	sig, err := (&fakeECDSAKey{priv: priv}).Sign(rand.Reader, transcriptHash, HashSHA256, SigECDSA)
	require.NoError(t, err)

	body := []byte{HashSHA256, SigECDSA, byte(len(sig) >> 8), byte(len(sig))}
	body = append(body, sig...)
	msg, err := ParseCertificateVerify(body)
	require.NoError(t, err)

	err = VerifyCertificateVerify(msg, leafDER, []byte("a different transcript hash value!!"))
	require.Error(t, err)
}

func TestParseCertificateVerifyRejectsLengthMismatch(t *testing.T) {
	_, err := ParseCertificateVerify([]byte{HashSHA256, SigECDSA, 0, 5, 1, 2})
	require.Error(t, err)
}
