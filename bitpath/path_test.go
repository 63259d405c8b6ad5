package bitpath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dapperlabs/hubt/bitpath"
	"github.com/dapperlabs/hubt/hash"
)

func pathFromBits(bits ...byte) bitpath.Path {
	var h hash.Hash
	for i, b := range bits {
		if b != 0 {
			h[i/8] |= 1 << uint(7-i%8)
		}
	}
	return bitpath.FromHash(h)
}

func TestBitAndWithBit(t *testing.T) {
	p := pathFromBits(1, 0, 1, 1)
	assert.Equal(t, 1, p.Bit(0))
	assert.Equal(t, 0, p.Bit(1))
	assert.Equal(t, 1, p.Bit(2))
	assert.Equal(t, 1, p.Bit(3))
	assert.Equal(t, 0, p.Bit(4))

	p2 := p.WithBit(1, 1)
	assert.Equal(t, 1, p2.Bit(1))
	// Original is untouched: WithBit returns a copy.
	assert.Equal(t, 0, p.Bit(1))

	p3 := p2.WithBit(0, 0)
	assert.Equal(t, 0, p3.Bit(0))
}

func TestTruncate(t *testing.T) {
	p := pathFromBits(1, 1, 1, 1, 1, 1, 1, 1, 1)

	trunc := p.Truncate(4)
	assert.Equal(t, 1, trunc.Bit(0))
	assert.Equal(t, 1, trunc.Bit(3))
	assert.Equal(t, 0, trunc.Bit(4))
	assert.Equal(t, 0, trunc.Bit(8))

	assert.Equal(t, bitpath.Path{}, p.Truncate(0))
	assert.Equal(t, p, p.Truncate(bitpath.Len))
}

func TestDivergenceIndexAndLCP(t *testing.T) {
	a := pathFromBits(1, 1, 0, 1)
	b := pathFromBits(1, 1, 1, 1)

	assert.Equal(t, 2, bitpath.DivergenceIndex(a, b))

	lcp, n := bitpath.LCP(a, b)
	require.Equal(t, 2, n)
	assert.Equal(t, a.Truncate(2), lcp)

	assert.Equal(t, bitpath.Len, bitpath.DivergenceIndex(a, a))
}

func TestPrefixMatch(t *testing.T) {
	a := pathFromBits(1, 1, 0, 1, 0, 0, 0, 0, 1)
	b := pathFromBits(1, 1, 0, 1, 1, 1, 1, 1, 0)

	assert.True(t, bitpath.PrefixMatch(a, b, 4))
	assert.False(t, bitpath.PrefixMatch(a, b, 5))
	assert.True(t, bitpath.PrefixMatch(a, b, 0))
	// n beyond Len has no meaning past the full path; for equal paths it is
	// trivially satisfied.
	assert.True(t, bitpath.PrefixMatch(a, a, 257))
	assert.False(t, bitpath.PrefixMatch(a, b, 257))
}

func TestCompareOrdersLikeBigEndianInteger(t *testing.T) {
	a := pathFromBits(0, 0, 0, 1)
	b := pathFromBits(0, 0, 1, 0)

	assert.Equal(t, -1, bitpath.Compare(a, b))
	assert.Equal(t, 1, bitpath.Compare(b, a))
	assert.Equal(t, 0, bitpath.Compare(a, a))
}

func TestFromHashRoundTripsBytes(t *testing.T) {
	h := hash.Of([]byte("some-key"))
	p := bitpath.FromHash(h)
	assert.Equal(t, [32]byte(h), p.Bytes())
}
