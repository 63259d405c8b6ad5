package tree

import "errors"

// Sentinel errors for prover preconditions. Verifier functions never return
// these — they are total and return a bool.
var (
	// ErrNotFound is returned by Prove when the claimed (key, value) pair is
	// not the leaf actually stored at H(k).
	ErrNotFound = errors.New("hubt/tree: inclusion requested for absent key/value pair")
	// ErrKeyExists is returned by ProveNonExistence when the key is present.
	ErrKeyExists = errors.New("hubt/tree: exclusion requested for a key that is present")
	// ErrKeyNotFound is returned by ProveMismatch when the key is absent.
	ErrKeyNotFound = errors.New("hubt/tree: mismatch requested for absent key")
	// ErrValueMatches is returned by ProveMismatch when the claimed value is
	// actually the stored one.
	ErrValueMatches = errors.New("hubt/tree: mismatch requested but claimed value matches stored value")
)
