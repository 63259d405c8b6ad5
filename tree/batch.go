package tree

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/dapperlabs/hubt/bitpath"
	"github.com/dapperlabs/hubt/hash"
	"github.com/dapperlabs/hubt/store"
)

// OpKind distinguishes the two kinds of batch operation.
type OpKind int

const (
	// OpInsert upserts a key-value pair.
	OpInsert OpKind = iota
	// OpDelete removes a key, if present.
	OpDelete
)

// Op is one entry in a batch passed to Tree.BatchUpdate.
type Op struct {
	Kind  OpKind
	Key   []byte
	Value []byte // only meaningful for OpInsert
}

// Insert builds an OpInsert for k, v.
func Insert(k, v []byte) Op { return Op{Kind: OpInsert, Key: k, Value: v} }

// Delete builds an OpDelete for k.
func Delete(k []byte) Op { return Op{Kind: OpDelete, Key: k} }

// preparedOp is an Op normalized to leaf form: hashed path, and (for
// inserts) the precomputed leaf hash H(k‖v).
type preparedOp struct {
	Kind     OpKind
	Path     bitpath.Path
	LeafHash hash.Hash
}

func prepare(ops []Op) []preparedOp {
	prepared := make([]preparedOp, len(ops))
	for i, op := range ops {
		path := bitpath.FromHash(hash.Of(op.Key))
		switch op.Kind {
		case OpInsert:
			prepared[i] = preparedOp{Kind: OpInsert, Path: path, LeafHash: hash.Leaf(op.Key, op.Value)}
		case OpDelete:
			prepared[i] = preparedOp{Kind: OpDelete, Path: path}
		}
	}
	return prepared
}

// BatchUpdate applies a sequence of inserts/deletes atomically from the
// caller's point of view (individual store operations are atomic points;
// batch-level crash atomicity beyond that is not required).
//
// Ops are normalized by hashing (Insert -> (Insert, H(k), H(k‖v)), Delete ->
// (Delete, H(k))), then sorted stably by path ascending. Within one batch,
// all deletes are applied before any insert, then split points are created
// for the inserted leaves, then every potentially-affected ancestor is
// rehashed or pruned bottom-up. A batch containing both Delete(k) and
// Insert(k, v) therefore always ends with k present and mapped to v,
// regardless of the two ops' relative order in the input.
func (t *Tree) BatchUpdate(ops []Op) error {
	prepared := prepare(ops)
	sort.SliceStable(prepared, func(i, j int) bool {
		return bitpath.Compare(prepared[i].Path, prepared[j].Path) < 0
	})

	var result *multierror.Error

	for _, op := range prepared {
		if op.Kind != OpDelete {
			continue
		}
		if err := t.store.Delete(store.NodeKey{Path: op.Path, Len: uint16(bitpath.Len)}); err != nil {
			result = multierror.Append(result, fmt.Errorf("delete %x: %w", op.Path.Bytes(), err))
		}
	}
	for _, op := range prepared {
		if op.Kind != OpInsert {
			continue
		}
		if err := t.store.Insert(store.NodeKey{Path: op.Path, Len: uint16(bitpath.Len)}, op.LeafHash); err != nil {
			result = multierror.Append(result, fmt.Errorf("insert %x: %w", op.Path.Bytes(), err))
		}
	}
	if result.ErrorOrNil() != nil {
		return result
	}

	for _, op := range prepared {
		if op.Kind != OpInsert {
			continue
		}
		if err := ensureSplitPoints(t.store, op.Path, op.LeafHash); err != nil {
			result = multierror.Append(result, fmt.Errorf("ensure split points for %x: %w", op.Path.Bytes(), err))
		}
	}
	if result.ErrorOrNil() != nil {
		return result
	}

	dirty, err := collectDirtyAncestors(t.store, prepared)
	if err != nil {
		return fmt.Errorf("hubt/tree: collect dirty ancestors: %w", err)
	}

	if err := rehashAndPruneBatch(t.store, dirty); err != nil {
		return fmt.Errorf("hubt/tree: rehash and prune batch: %w", err)
	}

	if t.assertInvariants {
		if err := t.assertTwoChildInvariant(dirty); err != nil {
			return fmt.Errorf("hubt/tree: invariant I2/I3 violated after batch: %w", err)
		}
	}

	t.bumpGeneration()

	t.log.Debug().
		Int("ops", len(ops)).
		Int("dirty_nodes", len(dirty)).
		Msg("batch applied")

	return nil
}
