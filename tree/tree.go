// Package tree implements the Hot Unified Binary Tree engine: an
// authenticated key-value index whose topology is implicit in the sort
// order of an underlying store.Store, with a 256-bit root commitment and
// inclusion/exclusion/mismatch proof generation and verification.
package tree

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"github.com/dapperlabs/hubt/hash"
	"github.com/dapperlabs/hubt/store"
)

// rootCacheSize bounds the generation->root LRU. Only the current
// generation is ever looked up in steady state; a handful of slots is
// cushion against readers racing a writer across a generation bump.
const rootCacheSize = 8

// Tree is the HUBT engine bound to a particular store.Store.
type Tree struct {
	store store.Store
	log   zerolog.Logger

	assertInvariants bool

	mu         sync.Mutex
	generation uint64
	roots      *lru.Cache
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger attaches a structured logger for batch/anomaly events.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Tree) { t.log = log }
}

// WithAssertInvariants enables an O(dirty set) self-check after every batch:
// each dirty internal node still present in the store must have two
// populated children (I2) and store the hash of those children (I3). It is
// meant for tests and debugging, not production
// traffic: the check re-reads every dirty node's children from the store.
func WithAssertInvariants(enabled bool) Option {
	return func(t *Tree) { t.assertInvariants = enabled }
}

// New builds a Tree over s.
func New(s store.Store, opts ...Option) (*Tree, error) {
	cache, err := lru.New(rootCacheSize)
	if err != nil {
		return nil, fmt.Errorf("hubt/tree: new root cache: %w", err)
	}
	t := &Tree{
		store: s,
		log:   zerolog.Nop(),
		roots: cache,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// bumpGeneration advances the tree's generation counter, invalidating the
// root-hash cache entry for every prior generation (they simply age out of
// the LRU without being explicitly evicted).
func (t *Tree) bumpGeneration() {
	t.mu.Lock()
	t.generation++
	t.mu.Unlock()
}

func (t *Tree) currentGeneration() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// Root returns the current root commitment, or hash.Zero if the store is
// empty. Per I4, the store's smallest key is always the top-level node
// covering every leaf, whether it is the branching node at the depth of all
// leaves' common prefix or a single leaf; its stored hash is the root
// commitment. The
// result is memoized per generation since every caller re-derives the same
// value until the next batch.
func (t *Tree) Root() (hash.Hash, error) {
	gen := t.currentGeneration()
	if cached, ok := t.roots.Get(gen); ok {
		return cached.(hash.Hash), nil
	}

	entry, ok, err := t.store.First()
	if err != nil {
		return hash.Hash{}, fmt.Errorf("hubt/tree: root: %w", err)
	}
	root := hash.Zero
	if ok {
		root = entry.Hash
	}

	t.roots.Add(gen, root)
	return root, nil
}
