package badgerstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dapperlabs/hubt/bitpath"
	"github.com/dapperlabs/hubt/hash"
	"github.com/dapperlabs/hubt/internal/testutil"
	"github.com/dapperlabs/hubt/store"
	"github.com/dapperlabs/hubt/store/badgerstore"
)

func key(t *testing.T, b byte, length uint16) store.NodeKey {
	t.Helper()
	var h hash.Hash
	h[0] = b
	return store.NodeKey{Path: bitpath.FromHash(h), Len: length}
}

func TestLookupMissingKey(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		_, ok, err := s.Lookup(key(t, 0x10, 256))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInsertThenLookup(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		k := key(t, 0x10, 256)
		h := hash.Of([]byte("value"))

		require.NoError(t, s.Insert(k, h))

		got, ok, err := s.Lookup(k)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, h, got)
	})
}

func TestDeleteIsIdempotent(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		k := key(t, 0x10, 256)
		require.NoError(t, s.Delete(k))
		require.NoError(t, s.Delete(k))
	})
}

func TestFirstOnEmptyStore(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		_, ok, err := s.First()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestFirstReturnsSmallestKey(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		small := key(t, 0x01, 256)
		large := key(t, 0xF0, 256)

		require.NoError(t, s.Insert(large, hash.Of([]byte("large"))))
		require.NoError(t, s.Insert(small, hash.Of([]byte("small"))))

		entry, ok, err := s.First()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, small, entry.Key)
	})
}

func TestNextAndPrevAreStrict(t *testing.T) {
	testutil.RunWithBadgerStore(t, func(s *badgerstore.Store) {
		a := key(t, 0x01, 256)
		b := key(t, 0x02, 256)
		c := key(t, 0x03, 256)

		require.NoError(t, s.Insert(a, hash.Of([]byte("a"))))
		require.NoError(t, s.Insert(b, hash.Of([]byte("b"))))
		require.NoError(t, s.Insert(c, hash.Of([]byte("c"))))

		next, ok, err := s.Next(a)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, b, next.Key)

		// Next/Prev exclude the queried key itself even when it is present.
		next2, ok, err := s.Next(b)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, c, next2.Key)

		prev, ok, err := s.Prev(c)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, b, prev.Key)

		_, ok, err = s.Prev(a)
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = s.Next(c)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
