package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootHashCmd = &cobra.Command{
	Use:   "root",
	Short: "Print the tree's current root commitment, hex-encoded",
	Run:   runRoot,
}

func init() {
	rootCmd.AddCommand(rootHashCmd)
}

func runRoot(*cobra.Command, []string) {
	t, closeDB, err := openTree()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open tree")
	}
	defer closeDB()

	h, err := t.Root()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot read root")
	}
	fmt.Println(hex.EncodeToString(h.Bytes()))
}
