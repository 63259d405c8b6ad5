package tree

import (
	"fmt"

	"github.com/dapperlabs/hubt/hash"
	"github.com/dapperlabs/hubt/store"
)

// assertTwoChildInvariant re-derives every dirty internal node's children
// and confirms that a stored internal node always has two populated
// children (a node with only one populated child must have been pruned, not
// left behind) and that its stored hash equals H(left ‖ right) of those
// children. It is enabled only via WithAssertInvariants and is not meant
// to run against production traffic volumes: it re-walks the store once per
// dirty node.
func (t *Tree) assertTwoChildInvariant(dirty map[store.NodeKey]struct{}) error {
	for k := range dirty {
		stored, ok, err := t.store.Lookup(k)
		if err != nil {
			return err
		}
		if !ok {
			// Pruned away by rehashAndPruneBatch; nothing to check.
			continue
		}
		l, err := getChildHash(t.store, k.Path, int(k.Len), 0)
		if err != nil {
			return err
		}
		r, err := getChildHash(t.store, k.Path, int(k.Len), 1)
		if err != nil {
			return err
		}
		if l.IsZero() != r.IsZero() {
			return fmt.Errorf("node at path %x len %d has exactly one populated child", k.Path.Bytes(), k.Len)
		}
		if l.IsZero() && r.IsZero() {
			return fmt.Errorf("node at path %x len %d survived pruning with no populated children", k.Path.Bytes(), k.Len)
		}
		if stored != hash.Internal(l, r) {
			return fmt.Errorf("node at path %x len %d stores a hash that does not match its children", k.Path.Bytes(), k.Len)
		}
	}
	return nil
}
