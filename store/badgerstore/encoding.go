package badgerstore

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v4"

	"github.com/dapperlabs/hubt/hash"
)

// encodingVersion follows the versioned-binary-encoding convention of
// ledger/common/encoding.go: bumping this would let future code reject or
// branch on stored records from an older layout.
const encodingVersion = uint16(0)

// storedNode is the badger value for a node key: just the 32-byte stored
// hash today, wrapped in a versioned envelope so the on-disk format can grow
// (e.g. a future cached regCount) without an incompatible migration.
type storedNode struct {
	Version uint16
	Hash    []byte
}

func encodeValue(h hash.Hash) ([]byte, error) {
	rec := storedNode{Version: encodingVersion, Hash: h.Bytes()}
	b, err := msgpack.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("hubt/store/badgerstore: encode value: %w", err)
	}
	return b, nil
}

func decodeValue(b []byte) (hash.Hash, error) {
	var rec storedNode
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return hash.Hash{}, fmt.Errorf("hubt/store/badgerstore: decode value: %w", err)
	}
	if rec.Version > encodingVersion {
		return hash.Hash{}, fmt.Errorf("hubt/store/badgerstore: unsupported value encoding version %d", rec.Version)
	}
	if len(rec.Hash) != hash.Size {
		return hash.Hash{}, fmt.Errorf("hubt/store/badgerstore: stored hash has wrong length %d", len(rec.Hash))
	}
	return hash.FromBytes(rec.Hash), nil
}
