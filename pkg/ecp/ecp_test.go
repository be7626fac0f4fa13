package ecp

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/tls12/pkg/mpi"
)

func TestRegistryBuildsAllCurves(t *testing.T) {
	r, err := Registry()
	require.NoError(t, err)
	assert.Len(t, r, 7)
	for _, id := range Preference() {
		g, err := ByID(id)
		require.NoError(t, err)
		assert.Equal(t, id, g.ID)
	}
}

func TestByWireIDAndName(t *testing.T) {
	g, ok := ByWireID(23)
	require.True(t, ok)
	assert.Equal(t, "secp256r1", g.Name)

	g2, ok := ByName("brainpoolP512r1")
	require.True(t, ok)
	assert.Equal(t, BP512r1, g2.ID)

	_, ok = ByWireID(0xFFFF)
	assert.False(t, ok)
}

func shortWeierstrassCurves(t *testing.T) []*Group {
	r, err := Registry()
	require.NoError(t, err)
	var out []*Group
	for _, id := range Preference() {
		g := r[id]
		if g.Kind == ShortWeierstrass {
			out = append(out, g)
		}
	}
	return out
}

func TestGeneratorOnCurve(t *testing.T) {
	for _, g := range shortWeierstrassCurves(t) {
		assert.True(t, g.CheckPubkey(g.G), "%s: generator must satisfy curve equation", g.Name)
	}
}

func TestOrderTimesGeneratorIsInfinity(t *testing.T) {
	for _, g := range shortWeierstrassCurves(t) {
		r, err := g.ScalarMul(g.N, g.G, nil)
		require.NoError(t, err)
		assert.True(t, r.IsIdentity(), "%s: N*G must be infinity", g.Name)
	}
}

func TestOrderMinusOneGeneratorPlusGeneratorIsInfinity(t *testing.T) {
	for _, g := range shortWeierstrassCurves(t) {
		nMinus1 := mpi.New().Sub(g.N, mpi.New().SetInt(1))
		p, err := g.ScalarMul(nMinus1, g.G, nil)
		require.NoError(t, err)
		r := g.NewPoint()
		g.add(r, p, g.G)
		g.normalize(r)
		assert.True(t, r.IsIdentity(), "%s: (N-1)*G + G must be infinity", g.Name)
	}
}

func TestRandomScalarMulProducesValidPubkey(t *testing.T) {
	for _, g := range shortWeierstrassCurves(t) {
		_, q, err := g.GenerateKeyPair(rand.Reader)
		require.NoError(t, err)
		assert.True(t, g.CheckPubkey(q), "%s: generated pubkey must validate", g.Name)
	}
}

func TestMulAddMatchesOrdinaryAddition(t *testing.T) {
	for _, g := range shortWeierstrassCurves(t) {
		m := mpi.New().SetInt(7)
		n := mpi.New().SetInt(11)
		_, q, err := g.GenerateKeyPair(rand.Reader)
		require.NoError(t, err)

		mp, err := g.ScalarMul(m, g.G, nil)
		require.NoError(t, err)
		nq, err := g.ScalarMul(n, q, nil)
		require.NoError(t, err)
		want := g.NewPoint()
		g.add(want, mp, nq)
		g.normalize(want)

		got := g.MulAdd(m, g.G, n, q)
		assert.True(t, g.Equal(want, got), "%s: MulAdd must match ordinary addition", g.Name)
	}
}

func TestPointEncodeRoundTrip(t *testing.T) {
	for _, g := range shortWeierstrassCurves(t) {
		_, q, err := g.GenerateKeyPair(rand.Reader)
		require.NoError(t, err)

		enc := g.Marshal(q)
		dec, err := g.Unmarshal(enc)
		require.NoError(t, err)
		assert.True(t, g.Equal(q, dec), "%s: point encoding must round-trip", g.Name)
	}
}

func TestInfinityEncodeRoundTrip(t *testing.T) {
	g, err := ByID(Secp256r1)
	require.NoError(t, err)
	inf := g.NewPoint()
	inf.setInfinity()
	enc := g.Marshal(inf)
	assert.Equal(t, []byte{0x00}, enc)
	dec, err := g.Unmarshal(enc)
	require.NoError(t, err)
	assert.True(t, dec.IsIdentity())
}

func TestCompressedPointDecode(t *testing.T) {
	g, err := ByID(Secp256r1)
	require.NoError(t, err)
	_, q, err := g.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	ap := g.Affine(q)

	n := g.ByteLen()
	xb := ap.X.Bytes()
	buf := make([]byte, 1+n)
	if ap.Y.GetBit(0) == 1 {
		buf[0] = 0x03
	} else {
		buf[0] = 0x02
	}
	copy(buf[1+n-len(xb):], xb)

	dec, err := g.Unmarshal(buf)
	require.NoError(t, err)
	assert.True(t, g.Equal(q, dec))
}

func TestX25519ScalarMul(t *testing.T) {
	g, err := ByID(X25519)
	require.NoError(t, err)
	d1, q1, err := g.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	d2, q2, err := g.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	s1, err := g.ScalarMul(d1, q2, nil)
	require.NoError(t, err)
	s2, err := g.ScalarMul(d2, q1, nil)
	require.NoError(t, err)
	assert.Equal(t, s1.X.Bytes(), s2.X.Bytes(), "x25519 shared secret must agree")
}

func TestX25519PointEncodeLength(t *testing.T) {
	g, err := ByID(X25519)
	require.NoError(t, err)
	_, q, err := g.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	enc := g.Marshal(q)
	assert.Len(t, enc, 32)
	dec, err := g.Unmarshal(enc)
	require.NoError(t, err)
	assert.Equal(t, q.X.Bytes(), dec.X.Bytes())
}
