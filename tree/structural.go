package tree

import (
	"sort"

	"github.com/dapperlabs/hubt/bitpath"
	"github.com/dapperlabs/hubt/hash"
	"github.com/dapperlabs/hubt/store"
)

// closestOrNext implements the closest-or-next lookup: the store entry with
// the smallest ordered key >= (tag, path, len). It is how the engine walks
// into a subtree whose explicit internal node has been collapsed away.
func closestOrNext(s store.Store, path bitpath.Path, length int) (store.NodeKey, hash.Hash, bool, error) {
	target := store.NodeKey{Path: path.Truncate(length), Len: uint16(length)}
	if h, ok, err := s.Lookup(target); err != nil {
		return store.NodeKey{}, hash.Hash{}, false, err
	} else if ok {
		return target, h, true, nil
	}
	next, ok, err := s.Next(target)
	if err != nil {
		return store.NodeKey{}, hash.Hash{}, false, err
	}
	if !ok {
		return store.NodeKey{}, hash.Hash{}, false, nil
	}
	return next.Key, next.Hash, true, nil
}

// getChildHash returns the hash of the child subtree rooted at
// (parentPath with bit parentLen = dir, parentLen+1). A collapsed subtree's
// representative entry may live deeper than parentLen+1; its stored hash is
// still the correct subtree root, so we only need to confirm the
// representative entry actually shares the child's path prefix before
// trusting its hash.
func getChildHash(s store.Store, parentPath bitpath.Path, parentLen int, dir int) (hash.Hash, error) {
	target := parentPath.Truncate(parentLen).WithBit(parentLen, dir)
	key, h, ok, err := closestOrNext(s, target, parentLen+1)
	if err != nil {
		return hash.Hash{}, err
	}
	if !ok {
		return hash.Zero, nil
	}
	if bitpath.PrefixMatch(target, key.Path, parentLen+1) {
		return h, nil
	}
	return hash.Zero, nil
}

// ensureSplitPoints creates, on leaf insertion, a new branching node at the
// LCP of the new leaf with either of its immediate neighbors in sort order,
// wherever one is needed. The hash written here is
// provisional — H(leaf ‖ neighbor) regardless of which side the neighbor is
// on, so correct only when the neighbor is the next leaf and the two are the
// only leaves under that prefix — and is always overwritten by the
// subsequent rehash sweep over the dirty set.
func ensureSplitPoints(s store.Store, leafPath bitpath.Path, leafHash hash.Hash) error {
	leafKey := store.NodeKey{Path: leafPath, Len: uint16(bitpath.Len)}

	neighbors := []struct {
		lookup func(store.NodeKey) (store.Entry, bool, error)
	}{
		{s.Prev},
		{s.Next},
	}
	for _, n := range neighbors {
		entry, ok, err := n.lookup(leafKey)
		if err != nil {
			return err
		}
		if !ok || entry.Key.Len != uint16(bitpath.Len) {
			// Neighbor is internal (or absent): the dirty-set sweep from the
			// walk-changes traversal will reach the correct node on its own.
			continue
		}
		lcpPath, lcpLen := bitpath.LCP(leafPath, entry.Key.Path)
		provisional := hash.Internal(leafHash, entry.Hash)
		if err := s.Insert(store.NodeKey{Path: lcpPath, Len: uint16(lcpLen)}, provisional); err != nil {
			return err
		}
	}
	return nil
}

// walkAncestors is the shared traversal behind both dirty-ancestor
// collection and proof-node generation: it walks downward toward target by
// repeatedly calling Prev on the store,
// starting from (target, start+1), visiting every ancestor of target it
// passes through and jumping over off-path subtrees via their LCP with
// target. visit is called once per ancestor, in leaf-to-root order.
func walkAncestors(s store.Store, target bitpath.Path, start int, visit func(store.NodeKey) error) error {
	cursor := store.NodeKey{Path: target.Truncate(start + 1), Len: uint16(start + 1)}
	for {
		entry, ok, err := s.Prev(cursor)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		p, l := entry.Key.Path, int(entry.Key.Len)
		if bitpath.PrefixMatch(target, p, l) {
			if err := visit(entry.Key); err != nil {
				return err
			}
			cursor = entry.Key
			continue
		}
		lcpPath, lcpLen := bitpath.LCP(p, target)
		jump := store.NodeKey{Path: lcpPath, Len: uint16(lcpLen + 1)}
		if store.Compare(jump, entry.Key) < 0 {
			cursor = jump
		} else {
			cursor = entry.Key
		}
	}
}

// collectDirtyAncestors accumulates every ancestor of every prepared op's
// leaf path into a set. This set contains all nodes whose hash may have
// changed as a result of the batch.
func collectDirtyAncestors(s store.Store, ops []preparedOp) (map[store.NodeKey]struct{}, error) {
	dirty := make(map[store.NodeKey]struct{})
	for _, op := range ops {
		err := walkAncestors(s, op.Path, bitpath.Len-1, func(k store.NodeKey) error {
			dirty[k] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirty, nil
}

// rehashAndPruneBatch sorts the dirty set deepest first, and for each node
// either rehashes it from its two children (if both are populated) or
// deletes it (if only one child is populated, since a single-child internal
// node is not representable). Descending order ensures children are
// finalized before their parents are visited.
func rehashAndPruneBatch(s store.Store, dirty map[store.NodeKey]struct{}) error {
	keys := make([]store.NodeKey, 0, len(dirty))
	for k := range dirty {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Len > keys[j].Len
	})

	for _, k := range keys {
		l, err := getChildHash(s, k.Path, int(k.Len), 0)
		if err != nil {
			return err
		}
		r, err := getChildHash(s, k.Path, int(k.Len), 1)
		if err != nil {
			return err
		}
		if !l.IsZero() && !r.IsZero() {
			if err := s.Insert(k, hash.Internal(l, r)); err != nil {
				return err
			}
			continue
		}
		if err := s.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
