package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dapperlabs/hubt/bitpath"
	"github.com/dapperlabs/hubt/hash"
	"github.com/dapperlabs/hubt/internal/testutil"
	"github.com/dapperlabs/hubt/store/badgerstore"
	"github.com/dapperlabs/hubt/tree"
)

func buildSample(t *testing.T, tr *tree.Tree) {
	t.Helper()
	require.NoError(t, tr.BatchUpdate([]tree.Op{
		tree.Insert(k0, v0),
		tree.Insert(k1, v1),
		tree.Insert([]byte("alpha"), []byte("va")),
		tree.Insert([]byte("beta"), []byte("vb")),
		tree.Insert([]byte("gamma"), []byte("vc")),
	}))
}

// invariant 3: verify(k, v, prove(k, v)) is true for every stored pair.
func TestProveAndVerifyInclusion(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		tr, err := tree.New(s)
		require.NoError(t, err)
		buildSample(t, tr)

		for _, kv := range [][2][]byte{
			{k0, v0}, {k1, v1},
			{[]byte("alpha"), []byte("va")},
			{[]byte("beta"), []byte("vb")},
			{[]byte("gamma"), []byte("vc")},
		} {
			proof, err := tr.Prove(kv[0], kv[1])
			require.NoError(t, err)
			assert.True(t, tree.Verify(kv[0], kv[1], proof))
		}
	})
}

// invariant 4: a wrong value never verifies against a genuine proof.
func TestVerifyRejectsWrongValue(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		tr, err := tree.New(s)
		require.NoError(t, err)
		buildSample(t, tr)

		proof, err := tr.Prove(k0, v0)
		require.NoError(t, err)
		assert.False(t, tree.Verify(k0, []byte("not-the-value"), proof))
	})
}

func TestProveInclusionAbsentKeyFails(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		tr, err := tree.New(s)
		require.NoError(t, err)
		buildSample(t, tr)

		_, err = tr.Prove([]byte("not-present"), []byte("v"))
		assert.ErrorIs(t, err, tree.ErrNotFound)
	})
}

// invariant 8, restricted to cross-key forgery: a proof for one key cannot
// verify against a different key.
func TestVerifyRejectsProofFromAnotherKey(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		tr, err := tree.New(s)
		require.NoError(t, err)
		buildSample(t, tr)

		proof, err := tr.Prove(k0, v0)
		require.NoError(t, err)
		assert.False(t, tree.Verify(k1, v1, proof))
	})
}

// invariant 6: prove_non_existence of a present key reports ErrKeyExists.
func TestProveNonExistenceRejectsPresentKey(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		tr, err := tree.New(s)
		require.NoError(t, err)
		buildSample(t, tr)

		_, err = tr.ProveNonExistence(k0)
		assert.ErrorIs(t, err, tree.ErrKeyExists)
	})
}

// invariant 5 / scenario S5: absent keys verify as absent, and the proven
// neighbor really doesn't equal the queried path.
func TestProveAndVerifyNonExistence(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		tr, err := tree.New(s)
		require.NoError(t, err)
		buildSample(t, tr)

		for _, k := range [][]byte{[]byte("not-present"), []byte("also-absent"), []byte("delta")} {
			proof, err := tr.ProveNonExistence(k)
			require.NoError(t, err)
			assert.NotEqual(t, bitpath.FromHash(hash.Of(k)), proof.ProvenPath)
			assert.True(t, tree.VerifyNonExistence(k, proof))
		}
	})
}

// scenario S1/10: an empty tree's non-existence proof is trivially valid
// for any key and carries the zero root with no sibling nodes.
func TestProveNonExistenceOnEmptyTree(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		tr, err := tree.New(s)
		require.NoError(t, err)

		proof, err := tr.ProveNonExistence([]byte("anything"))
		require.NoError(t, err)
		assert.Equal(t, hash.Zero, proof.Root)
		assert.Empty(t, proof.Nodes)
		assert.True(t, tree.VerifyNonExistence([]byte("anything"), proof))
	})
}

// scenario S6: tampering with a genuine non-existence proof by appending a
// fabricated sibling node must be rejected.
func TestVerifyNonExistenceRejectsForgedAmbiguousSibling(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		tr, err := tree.New(s)
		require.NoError(t, err)
		buildSample(t, tr)

		target := []byte("not-present")
		proof, err := tr.ProveNonExistence(target)
		require.NoError(t, err)
		require.True(t, tree.VerifyNonExistence(target, proof))

		divergence := bitpath.DivergenceIndex(proof.ProvenPath, bitpath.FromHash(hash.Of(target)))

		forged := proof
		forged.Nodes = append(append([]tree.ProofNode{}, proof.Nodes...), tree.ProofNode{
			Hash:      hash.Of([]byte("fabricated")),
			Direction: 0,
			Len:       uint16(divergence),
		})

		assert.False(t, tree.VerifyNonExistence(target, forged))
	})
}

// invariant 7: prove_mismatch reports ValueMatches when the claimed value is
// actually correct, and otherwise produces a proof verify_mismatch accepts.
func TestProveAndVerifyMismatch(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		tr, err := tree.New(s)
		require.NoError(t, err)
		buildSample(t, tr)

		_, err = tr.ProveMismatch(k0, v0)
		assert.ErrorIs(t, err, tree.ErrValueMatches)

		claimed := []byte("something-else")
		proof, err := tr.ProveMismatch(k0, claimed)
		require.NoError(t, err)
		assert.True(t, tree.VerifyMismatch(k0, claimed, proof))
	})
}

func TestProveMismatchAbsentKeyFails(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		tr, err := tree.New(s)
		require.NoError(t, err)
		buildSample(t, tr)

		_, err = tr.ProveMismatch([]byte("not-present"), []byte("v"))
		assert.ErrorIs(t, err, tree.ErrKeyNotFound)
	})
}
