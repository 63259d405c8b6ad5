package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dapperlabs/hubt/tree"
)

var flagProofFile string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify an inclusion proof (read from --proof, or stdin) against a key/value pair",
	Run:   runVerify,
}

var verifyAbsenceCmd = &cobra.Command{
	Use:   "verify-absence",
	Short: "Verify a non-existence proof (read from --proof, or stdin) against a key",
	Run:   runVerifyAbsence,
}

var verifyMismatchCmd = &cobra.Command{
	Use:   "verify-mismatch",
	Short: "Verify a mismatch proof (read from --proof, or stdin) against a key and claimed value",
	Run:   runVerifyMismatch,
}

func init() {
	for _, c := range []*cobra.Command{verifyCmd, verifyAbsenceCmd, verifyMismatchCmd} {
		c.Flags().StringVarP(&flagProofFile, "proof", "p", "", "path to a JSON proof file (default: stdin)")
		c.Flags().StringVarP(&flagProveKey, "key", "k", "", "hex-encoded key")
		_ = c.MarkFlagRequired("key")
	}
	for _, c := range []*cobra.Command{verifyCmd, verifyMismatchCmd} {
		c.Flags().StringVarP(&flagProveValue, "value", "v", "", "hex-encoded value")
		_ = c.MarkFlagRequired("value")
	}
	rootCmd.AddCommand(verifyCmd, verifyAbsenceCmd, verifyMismatchCmd)
}

func readProof(v interface{}) {
	var (
		r   io.Reader
		err error
	)
	if flagProofFile == "" {
		r = os.Stdin
	} else {
		f, ferr := os.Open(flagProofFile)
		if ferr != nil {
			log.Fatal().Err(ferr).Msg("cannot open proof file")
		}
		defer f.Close()
		r = f
	}
	if err = json.NewDecoder(r).Decode(v); err != nil {
		log.Fatal().Err(err).Msg("cannot decode proof")
	}
}

func reportVerdict(ok bool) {
	if ok {
		fmt.Println("PASS")
		return
	}
	fmt.Println("FAIL")
	os.Exit(1)
}

func runVerify(*cobra.Command, []string) {
	key := decodeHexFlag("key", flagProveKey)
	value := decodeHexFlag("value", flagProveValue)

	var proof tree.InclusionProof
	readProof(&proof)

	reportVerdict(tree.Verify(key, value, proof))
}

func runVerifyAbsence(*cobra.Command, []string) {
	key := decodeHexFlag("key", flagProveKey)

	var proof tree.NonExistenceProof
	readProof(&proof)

	reportVerdict(tree.VerifyNonExistence(key, proof))
}

func runVerifyMismatch(*cobra.Command, []string) {
	key := decodeHexFlag("key", flagProveKey)
	value := decodeHexFlag("value", flagProveValue)

	var proof tree.MismatchProof
	readProof(&proof)

	reportVerdict(tree.VerifyMismatch(key, value, proof))
}
