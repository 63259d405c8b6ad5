// Package bitpath provides path/bit utilities over 256-bit paths derived
// from SHA-256 digests: longest-common-prefix, divergence index, prefix
// matching, and padding.
package bitpath

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/bits"

	"github.com/dapperlabs/hubt/hash"
)

// Len is the number of bits in a fully padded Path.
const Len = 256

const words = Len / 64

// Path is a 256-bit bitstring, stored big-endian (bit 0 is the MSB of the
// first byte), always padded to exactly 256 bits. Only the first `len` bits
// of a path are semantically meaningful for a node at depth `len`.
type Path [32]byte

// FromHash reinterprets a 32-byte hash digest as a Path. This is how a raw
// user key becomes a tree path: Path = H(k).
func FromHash(h hash.Hash) Path {
	return Path(h)
}

// Bytes returns the raw 32-byte big-endian representation.
func (p Path) Bytes() [32]byte {
	return p
}

// word returns the i-th 64-bit big-endian word (i in [0,4)) of the path.
func (p Path) word(i int) uint64 {
	return binary.BigEndian.Uint64(p[i*8 : i*8+8])
}

// Bit returns the value (0 or 1) of the i-th bit (0-indexed from the MSB).
// i must be in [0, 256).
func (p Path) Bit(i int) int {
	byteIdx := i / 8
	bitIdx := uint(7 - i%8)
	return int((p[byteIdx] >> bitIdx) & 1)
}

// WithBit returns a copy of p with bit i set to the given value (0 or 1).
func (p Path) WithBit(i int, v int) Path {
	out := p
	byteIdx := i / 8
	bitIdx := uint(7 - i%8)
	if v != 0 {
		out[byteIdx] |= 1 << bitIdx
	} else {
		out[byteIdx] &^= 1 << bitIdx
	}
	return out
}

// Truncate returns a copy of p with every bit at index >= n zeroed, i.e. the
// first n bits extracted and zero-padded to 256 bits.
func (p Path) Truncate(n int) Path {
	var out Path
	if n <= 0 {
		return out
	}
	if n >= Len {
		return p
	}
	fullBytes := n / 8
	copy(out[:fullBytes], p[:fullBytes])
	rem := n % 8
	if rem > 0 {
		mask := byte(0xFF << uint(8-rem))
		out[fullBytes] = p[fullBytes] & mask
	}
	return out
}

// DivergenceIndex returns the bit position at which a and b first differ,
// i.e. the length (in bits) of their longest common prefix. Equal paths
// return 256.
func DivergenceIndex(a, b Path) int {
	for i := 0; i < words; i++ {
		x := a.word(i) ^ b.word(i)
		if x != 0 {
			return i*64 + bits.LeadingZeros64(x)
		}
	}
	return Len
}

// LCP returns the longest common prefix of a and b: the shared bits,
// zero-padded to 256 bits, and its length in bits.
func LCP(a, b Path) (Path, int) {
	n := DivergenceIndex(a, b)
	return a.Truncate(n), n
}

// PrefixMatch reports whether the first n bits of target equal the first n
// bits of path.
func PrefixMatch(target, path Path, n int) bool {
	if n <= 0 {
		return true
	}
	if n >= Len {
		return target == path
	}
	fullWords := n / 64
	for i := 0; i < fullWords; i++ {
		if target.word(i) != path.word(i) {
			return false
		}
	}
	rem := n % 64
	if rem == 0 {
		return true
	}
	shift := uint(64 - rem)
	return (target.word(fullWords) >> shift) == (path.word(fullWords) >> shift)
}

// String renders p as lowercase hex.
func (p Path) String() string {
	return hex.EncodeToString(p[:])
}

// MarshalJSON renders p as a hex string rather than an array of 32 numbers.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses the hex string produced by MarshalJSON.
func (p *Path) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("bitpath: unmarshal: %w", err)
	}
	if len(decoded) != Len/8 {
		return fmt.Errorf("bitpath: unmarshal: wrong length %d", len(decoded))
	}
	copy(p[:], decoded)
	return nil
}

// Compare returns -1, 0, or 1 comparing a and b as 256-bit big-endian
// integers, matching byte-lexicographic order.
func Compare(a, b Path) int {
	for i := 0; i < words; i++ {
		wa, wb := a.word(i), b.word(i)
		if wa != wb {
			if wa < wb {
				return -1
			}
			return 1
		}
	}
	return 0
}
