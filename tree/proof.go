package tree

import (
	"fmt"

	"github.com/dapperlabs/hubt/bitpath"
	"github.com/dapperlabs/hubt/hash"
	"github.com/dapperlabs/hubt/store"
)

// ProofNode is one sibling hash on the path from a leaf (or claimed leaf
// position) to the root. Direction is the bit the proven path took away from
// this node: 0 means the proven leaf is the node's left child and Hash is
// the right sibling's hash, 1 the reverse.
type ProofNode struct {
	Hash      hash.Hash
	Direction uint8
	Len       uint16
}

// InclusionProof attests that (k, v) is present under Root.
type InclusionProof struct {
	Root  hash.Hash
	Nodes []ProofNode
}

// NonExistenceProof attests that k is absent under Root, by exhibiting the
// leaf that would be k's neighbor if k were present: ProvenPath/ProvenHash
// identify that neighbor and Nodes are the sibling hashes from it to the
// root. A Root of hash.Zero is the special case of an empty tree, for which
// Nodes is always empty and ProvenPath/ProvenHash are unused.
type NonExistenceProof struct {
	Root       hash.Hash
	ProvenPath bitpath.Path
	ProvenHash hash.Hash
	Nodes      []ProofNode
}

// MismatchProof attests that k is present but mapped to a value other than
// the one claimed, by exhibiting the actually-stored leaf hash alongside the
// claimed one.
type MismatchProof struct {
	Root        hash.Hash
	ActualHash  hash.Hash
	ClaimedHash hash.Hash
	Nodes       []ProofNode
}

// generateProofNodes walks from (path, ln) to the root, collecting the
// sibling hash and direction at each ancestor, in leaf-to-root order. It is
// built on the same walkAncestors traversal the batch updater uses to find
// dirty nodes.
func generateProofNodes(s store.Store, path bitpath.Path, ln int) ([]ProofNode, error) {
	var nodes []ProofNode
	err := walkAncestors(s, path, ln-1, func(k store.NodeKey) error {
		dir := path.Bit(int(k.Len))
		siblingDir := 1 - dir
		siblingHash, err := getChildHash(s, k.Path, int(k.Len), siblingDir)
		if err != nil {
			return err
		}
		nodes = append(nodes, ProofNode{Hash: siblingHash, Direction: uint8(dir), Len: k.Len})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// prevLeaf returns the nearest leaf entry with a key strictly less than k,
// skipping over any internal (non-leaf) nodes the store's Prev happens to
// land on along the way.
func prevLeaf(s store.Store, k store.NodeKey) (store.Entry, bool, error) {
	cursor := k
	for {
		entry, ok, err := s.Prev(cursor)
		if err != nil || !ok {
			return store.Entry{}, false, err
		}
		if entry.Key.Len == uint16(bitpath.Len) {
			return entry, true, nil
		}
		cursor = entry.Key
	}
}

// nextLeaf is prevLeaf's mirror image for the forward direction.
func nextLeaf(s store.Store, k store.NodeKey) (store.Entry, bool, error) {
	cursor := k
	for {
		entry, ok, err := s.Next(cursor)
		if err != nil || !ok {
			return store.Entry{}, false, err
		}
		if entry.Key.Len == uint16(bitpath.Len) {
			return entry, true, nil
		}
		cursor = entry.Key
	}
}

// Prove builds an InclusionProof for (k, v). It returns ErrNotFound if the
// stored leaf hash at H(k) does not equal H(k‖v).
func (t *Tree) Prove(k, v []byte) (InclusionProof, error) {
	path := bitpath.FromHash(hash.Of(k))
	leafKey := store.NodeKey{Path: path, Len: uint16(bitpath.Len)}

	stored, ok, err := t.store.Lookup(leafKey)
	if err != nil {
		return InclusionProof{}, fmt.Errorf("hubt/tree: prove: %w", err)
	}
	if !ok || stored != hash.Leaf(k, v) {
		return InclusionProof{}, ErrNotFound
	}

	nodes, err := generateProofNodes(t.store, path, bitpath.Len)
	if err != nil {
		return InclusionProof{}, fmt.Errorf("hubt/tree: prove: %w", err)
	}
	root, err := t.Root()
	if err != nil {
		return InclusionProof{}, fmt.Errorf("hubt/tree: prove: %w", err)
	}
	return InclusionProof{Root: root, Nodes: nodes}, nil
}

// ProveMismatch builds a MismatchProof that k is present but not mapped to
// vClaimed. Returns ErrKeyNotFound if k is absent, ErrValueMatches if
// vClaimed is in fact the stored value.
func (t *Tree) ProveMismatch(k, vClaimed []byte) (MismatchProof, error) {
	path := bitpath.FromHash(hash.Of(k))
	leafKey := store.NodeKey{Path: path, Len: uint16(bitpath.Len)}

	stored, ok, err := t.store.Lookup(leafKey)
	if err != nil {
		return MismatchProof{}, fmt.Errorf("hubt/tree: prove mismatch: %w", err)
	}
	if !ok {
		return MismatchProof{}, ErrKeyNotFound
	}
	claimed := hash.Leaf(k, vClaimed)
	if stored == claimed {
		return MismatchProof{}, ErrValueMatches
	}

	nodes, err := generateProofNodes(t.store, path, bitpath.Len)
	if err != nil {
		return MismatchProof{}, fmt.Errorf("hubt/tree: prove mismatch: %w", err)
	}
	root, err := t.Root()
	if err != nil {
		return MismatchProof{}, fmt.Errorf("hubt/tree: prove mismatch: %w", err)
	}
	return MismatchProof{Root: root, ActualHash: stored, ClaimedHash: claimed, Nodes: nodes}, nil
}

// ProveNonExistence builds a NonExistenceProof for k. Returns ErrKeyExists
// if k is actually present.
//
// The proven neighbor is whichever of k's strict predecessor/successor leaf
// shares the longer common prefix with k's path (a tie is broken toward the
// predecessor); that neighbor is the one whose position in the tree would
// have had to change to make room for k, so it is the one a verifier must
// check doesn't already branch away from k at or before the claimed depth.
func (t *Tree) ProveNonExistence(k []byte) (NonExistenceProof, error) {
	path := bitpath.FromHash(hash.Of(k))
	leafKey := store.NodeKey{Path: path, Len: uint16(bitpath.Len)}

	empty, err := store.Empty(t.store)
	if err != nil {
		return NonExistenceProof{}, fmt.Errorf("hubt/tree: prove non-existence: %w", err)
	}
	if empty {
		return NonExistenceProof{Root: hash.Zero}, nil
	}

	if _, ok, err := t.store.Lookup(leafKey); err != nil {
		return NonExistenceProof{}, fmt.Errorf("hubt/tree: prove non-existence: %w", err)
	} else if ok {
		return NonExistenceProof{}, ErrKeyExists
	}

	type candidate struct {
		entry  store.Entry
		lcpLen int
	}
	var best *candidate

	consider := func(entry store.Entry, ok bool) {
		if !ok {
			return
		}
		_, lcpLen := bitpath.LCP(path, entry.Key.Path)
		if best == nil || lcpLen > best.lcpLen {
			best = &candidate{entry: entry, lcpLen: lcpLen}
		}
	}

	prevEntry, ok, err := prevLeaf(t.store, leafKey)
	if err != nil {
		return NonExistenceProof{}, fmt.Errorf("hubt/tree: prove non-existence: %w", err)
	}
	consider(prevEntry, ok)

	nextEntry, ok, err := nextLeaf(t.store, leafKey)
	if err != nil {
		return NonExistenceProof{}, fmt.Errorf("hubt/tree: prove non-existence: %w", err)
	}
	consider(nextEntry, ok)

	if best == nil {
		return NonExistenceProof{}, fmt.Errorf("hubt/tree: prove non-existence: non-empty store has no neighbors for %x", path.Bytes())
	}

	nodes, err := generateProofNodes(t.store, best.entry.Key.Path, int(best.entry.Key.Len))
	if err != nil {
		return NonExistenceProof{}, fmt.Errorf("hubt/tree: prove non-existence: %w", err)
	}
	root, err := t.Root()
	if err != nil {
		return NonExistenceProof{}, fmt.Errorf("hubt/tree: prove non-existence: %w", err)
	}
	return NonExistenceProof{
		Root:       root,
		ProvenPath: best.entry.Key.Path,
		ProvenHash: best.entry.Hash,
		Nodes:      nodes,
	}, nil
}
