// Package testutil provides small test harnesses shared across the
// module's test suites.
package testutil

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"

	"github.com/dapperlabs/hubt/store/badgerstore"
)

// RunWithBadgerStore opens a badger database in a fresh temporary
// directory, wraps it as a badgerstore.Store, and hands it to f. The
// database and its directory are torn down when f returns.
func RunWithBadgerStore(t *testing.T, f func(*badgerstore.Store)) {
	dir := t.TempDir()

	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	f(badgerstore.New(db))
}
