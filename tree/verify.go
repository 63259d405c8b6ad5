package tree

import (
	"github.com/dapperlabs/hubt/bitpath"
	"github.com/dapperlabs/hubt/hash"
)

// CalculateRoot recomputes the root hash implied by a leaf hash and the
// sibling chain recorded in nodes (leaf-to-root order).
func CalculateRoot(leaf hash.Hash, nodes []ProofNode) hash.Hash {
	h := leaf
	for _, n := range nodes {
		if n.Direction == 0 {
			h = hash.Internal(h, n.Hash)
		} else {
			h = hash.Internal(n.Hash, h)
		}
	}
	return h
}

// Verify reports whether proof attests (k, v)'s inclusion under its Root.
func Verify(k, v []byte, proof InclusionProof) bool {
	leaf := hash.Leaf(k, v)
	return CalculateRoot(leaf, proof.Nodes) == proof.Root
}

// VerifyNonExistence reports whether proof attests k's absence under its
// Root. An empty-tree proof (Root == hash.Zero, no nodes) is valid for any
// k. Otherwise ProvenPath must differ from H(k), the proof must recompute to
// Root from ProvenHash, and no proof node may sit at exactly the depth where
// ProvenPath and H(k) diverge (such a node would mean H(k)'s side of that
// branch is populated).
func VerifyNonExistence(k []byte, proof NonExistenceProof) bool {
	target := bitpath.FromHash(hash.Of(k))

	if proof.Root.IsZero() && len(proof.Nodes) == 0 {
		return true
	}
	if proof.ProvenPath == target {
		return false
	}
	if CalculateRoot(proof.ProvenHash, proof.Nodes) != proof.Root {
		return false
	}

	divergence := bitpath.DivergenceIndex(proof.ProvenPath, target)
	// The proof is only valid if no node on the recorded path branches at
	// exactly the two paths' point of divergence: if one did, that node's
	// untaken child could itself hold a leaf equal to target, and the proof
	// would be "proving" the absence of a key that in fact exists. Nodes
	// deeper than the divergence point are ancestors of ProvenPath's own
	// private structure and say nothing about target's branch.
	for _, n := range proof.Nodes {
		if int(n.Len) == divergence {
			return false
		}
	}
	return true
}

// VerifyMismatch reports whether proof attests that k maps to something
// other than vClaimed under its Root.
func VerifyMismatch(k, vClaimed []byte, proof MismatchProof) bool {
	claimed := hash.Leaf(k, vClaimed)
	if claimed != proof.ClaimedHash {
		return false
	}
	if proof.ActualHash == proof.ClaimedHash {
		return false
	}
	return CalculateRoot(proof.ActualHash, proof.Nodes) == proof.Root
}
