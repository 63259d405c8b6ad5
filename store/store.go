// Package store defines the Ordered Store Abstraction: an abstract ordered
// key/value container keyed by (bit-path, depth), supporting
// first/lookup/prev/next/insert/delete, all in byte-lexicographic key
// order. The tree engine is built entirely on this interface;
// store/badgerstore provides the one concrete implementation.
package store

import (
	"encoding/binary"
	"errors"

	"github.com/dapperlabs/hubt/bitpath"
	"github.com/dapperlabs/hubt/hash"
)

// ErrNotFound is a sentinel for a missing entry. Lookup/Prev/Next/First
// report "not found" through their bool result and reserve the error for
// genuine I/O failures; badgerstore never returns ErrNotFound.
var ErrNotFound = errors.New("hubt/store: not found")

// codeNode namespaces tree node keys within a shared store (e.g. a badger DB
// that might also hold unrelated data), the same one-byte-prefix convention
// storage/badger/operation uses for its own key spaces.
const codeNode = byte(1)

// NodeKey is the triple (tag, path, len) identifying a node in the tree.
// Leaves have Len == bitpath.Len (256); internal branching nodes have
// Len in [0, 255].
type NodeKey struct {
	Path bitpath.Path
	Len  uint16
}

// KeySize is the encoded length of a NodeKey: 1 tag byte + 32 path bytes + 2
// length bytes.
const KeySize = 1 + 32 + 2

// Encode serializes a NodeKey as tag_byte ‖ path[0..32] ‖ len_be_u16.
// Byte-lexicographic order over this encoding is equivalent to comparing
// path as a 256-bit big-endian integer first, then len ascending, because
// the tag and path are fixed-width and the length field is a fixed-width
// big-endian integer appended after a fixed-width path.
func (k NodeKey) Encode() []byte {
	buf := make([]byte, KeySize)
	buf[0] = codeNode
	b := k.Path.Bytes()
	copy(buf[1:33], b[:])
	binary.BigEndian.PutUint16(buf[33:35], k.Len)
	return buf
}

// DecodeNodeKey parses the encoding produced by Encode.
func DecodeNodeKey(buf []byte) (NodeKey, error) {
	if len(buf) != KeySize {
		return NodeKey{}, errors.New("hubt/store: malformed node key")
	}
	if buf[0] != codeNode {
		return NodeKey{}, errors.New("hubt/store: node key has wrong namespace tag")
	}
	var k NodeKey
	k.Path = bitpath.Path(hash.FromBytes(buf[1:33]))
	k.Len = binary.BigEndian.Uint16(buf[33:35])
	return k, nil
}

// Compare orders two NodeKeys the way their encodings sort.
func Compare(a, b NodeKey) int {
	if c := bitpath.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	switch {
	case a.Len < b.Len:
		return -1
	case a.Len > b.Len:
		return 1
	default:
		return 0
	}
}

// Entry is a (key, hash) pair as returned by the range-lookup operations.
type Entry struct {
	Key  NodeKey
	Hash hash.Hash
}

// Store is the abstract ordered key/value container the tree engine is
// built on. All operations are by byte-lexicographic key order.
type Store interface {
	// First returns the entry with the smallest key, if any.
	First() (Entry, bool, error)
	// Lookup returns the value stored at exactly k, if any.
	Lookup(k NodeKey) (hash.Hash, bool, error)
	// Prev returns the entry with the largest key strictly less than k.
	Prev(k NodeKey) (Entry, bool, error)
	// Next returns the entry with the smallest key strictly greater than k.
	Next(k NodeKey) (Entry, bool, error)
	// Insert writes (overwriting any existing value at k).
	Insert(k NodeKey, h hash.Hash) error
	// Delete removes the entry at k, if any. Deleting an absent key is a
	// no-op.
	Delete(k NodeKey) error
}

// Empty reports whether the store currently holds no entries.
func Empty(s Store) (bool, error) {
	_, ok, err := s.First()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
