package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagProveKey   string
	flagProveValue string
)

var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "Produce an inclusion proof for a key/value pair, printed as JSON",
	Run:   runProve,
}

var proveAbsenceCmd = &cobra.Command{
	Use:   "prove-absence",
	Short: "Produce a non-existence proof for a key, printed as JSON",
	Run:   runProveAbsence,
}

var proveMismatchCmd = &cobra.Command{
	Use:   "prove-mismatch",
	Short: "Produce a mismatch proof for a key and a claimed (incorrect) value, printed as JSON",
	Run:   runProveMismatch,
}

func init() {
	for _, c := range []*cobra.Command{proveCmd, proveAbsenceCmd, proveMismatchCmd} {
		c.Flags().StringVarP(&flagProveKey, "key", "k", "", "hex-encoded key")
		_ = c.MarkFlagRequired("key")
	}
	for _, c := range []*cobra.Command{proveCmd, proveMismatchCmd} {
		c.Flags().StringVarP(&flagProveValue, "value", "v", "", "hex-encoded value")
		_ = c.MarkFlagRequired("value")
	}
	rootCmd.AddCommand(proveCmd, proveAbsenceCmd, proveMismatchCmd)
}

func decodeHexFlag(name, value string) []byte {
	b, err := hex.DecodeString(value)
	if err != nil {
		log.Fatal().Err(err).Str("flag", name).Msg("cannot decode hex flag")
	}
	return b
}

func printProof(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot encode proof")
	}
	fmt.Println(string(b))
}

func runProve(*cobra.Command, []string) {
	key := decodeHexFlag("key", flagProveKey)
	value := decodeHexFlag("value", flagProveValue)

	t, closeDB, err := openTree()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open tree")
	}
	defer closeDB()

	proof, err := t.Prove(key, value)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build inclusion proof")
	}
	printProof(proof)
}

func runProveAbsence(*cobra.Command, []string) {
	key := decodeHexFlag("key", flagProveKey)

	t, closeDB, err := openTree()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open tree")
	}
	defer closeDB()

	proof, err := t.ProveNonExistence(key)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build non-existence proof")
	}
	printProof(proof)
}

func runProveMismatch(*cobra.Command, []string) {
	key := decodeHexFlag("key", flagProveKey)
	value := decodeHexFlag("value", flagProveValue)

	t, closeDB, err := openTree()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open tree")
	}
	defer closeDB()

	proof, err := t.ProveMismatch(key, value)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build mismatch proof")
	}
	printProof(proof)
}
