package ext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServerName(t *testing.T) {
	host := "example.com"
	body := []byte{0, byte(3 + len(host))}
	body = append(body, 0) // host_name type
	body = append(body, byte(len(host)>>8), byte(len(host)))
	body = append(body, host...)

	name, err := ParseServerName(body)
	require.NoError(t, err)
	assert.Equal(t, host, name)
}

func TestParseSupportedGroupsRejectsDuplicates(t *testing.T) {
	body := []byte{0, 4, 0, 23, 0, 23}
	_, err := ParseSupportedGroups(body, 0)
	assert.Error(t, err)
}

func TestParseSupportedGroupsOrderPreserved(t *testing.T) {
	body := []byte{0, 4, 0, 23, 0, 24}
	ids, err := ParseSupportedGroups(body, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint16{23, 24}, ids)
}

func TestParseSignatureAlgorithmsKeepsFirstHashPerSig(t *testing.T) {
	body := []byte{0, 4, 4, 1, 5, 1} // (sha256, rsa), (sha384, rsa)
	algs, err := ParseSignatureAlgorithms(body, 0)
	require.NoError(t, err)
	require.Len(t, algs, 1)
	assert.Equal(t, uint8(4), algs[0].Hash)
}

func TestParseECPointFormats(t *testing.T) {
	body := []byte{2, 0, 1}
	uncompressed, compressed, err := ParseECPointFormats(body)
	require.NoError(t, err)
	assert.True(t, uncompressed)
	assert.True(t, compressed)
}

func TestParseExtendedMasterSecretRejectsNonEmpty(t *testing.T) {
	assert.NoError(t, ParseExtendedMasterSecret(nil))
	assert.Error(t, ParseExtendedMasterSecret([]byte{1}))
}

func TestParseRenegotiationInfo(t *testing.T) {
	assert.NoError(t, ParseRenegotiationInfo([]byte{0}))
	assert.Error(t, ParseRenegotiationInfo([]byte{1, 2}))
}

func TestALPNSelectIntersection(t *testing.T) {
	body := []byte{0, 10, 2, 'h', '2', 6, 'h', 't', 't', 'p', '/', '1'}
	offered, err := ParseALPN(body, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"h2", "http/1"}, offered)

	proto, ok := SelectALPN([]string{"http/1", "h2"}, offered)
	require.True(t, ok)
	assert.Equal(t, "http/1", proto)

	_, ok = SelectALPN([]string{"spdy/1"}, offered)
	assert.False(t, ok)
}
