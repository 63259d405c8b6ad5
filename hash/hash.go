// Package hash provides the SHA-256 primitives the tree engine builds on:
// hashing raw keys into paths, hashing key-value pairs into leaf values, and
// combining child hashes into parent values.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Size is the length in bytes of a Hash.
const Size = sha256.Size

// Hash is a 32-byte digest.
type Hash [Size]byte

// Zero is the sentinel for an absent/empty subtree.
var Zero Hash

// IsZero reports whether h is the all-zero sentinel.
func (h Hash) IsZero() bool {
	return h == Zero
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, h[:])
	return b
}

// FromBytes copies b (which must be exactly Size bytes) into a Hash.
func FromBytes(b []byte) Hash {
	var h Hash
	copy(h[:], b)
	return h
}

// Of hashes an arbitrary byte string. Used to derive a Path from a raw key.
func Of(data []byte) Hash {
	return sha256.Sum256(data)
}

// Leaf computes H(k ‖ v), the stored hash of a leaf node.
func Leaf(k, v []byte) Hash {
	h := sha256.New()
	h.Write(k)
	h.Write(v)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Internal computes H(l ‖ r), the stored hash of a branching internal node.
func Internal(l, r Hash) Hash {
	h := sha256.New()
	h.Write(l[:])
	h.Write(r[:])
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// String renders h as lowercase hex, for logging.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalJSON renders h as a hex string rather than an array of 32 numbers.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON parses the hex string produced by MarshalJSON.
func (h *Hash) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("hash: unmarshal: %w", err)
	}
	if len(decoded) != Size {
		return fmt.Errorf("hash: unmarshal: wrong length %d", len(decoded))
	}
	copy(h[:], decoded)
	return nil
}
