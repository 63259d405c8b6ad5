// Command hubtctl is a local debugging aid for exercising a Hot Unified
// Binary Tree backed by a badger file: applying batches, producing proofs,
// and verifying them. Its JSON proof encoding is a convenience for this CLI
// only, not a stabilized wire or storage format.
package main

import "github.com/dapperlabs/hubt/cmd/hubtctl/cmd"

func main() {
	cmd.Execute()
}
