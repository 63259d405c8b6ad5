package cmd

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dapperlabs/hubt/tree"
)

var flagBatchFile string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Apply a batch of inserts/deletes read from a JSON-lines file",
	Long: "Each line of the file is a JSON object: " +
		`{"op":"insert","key":"<hex>","value":"<hex>"} or {"op":"delete","key":"<hex>"}.`,
	Run: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&flagBatchFile, "file", "f", "", "path to the JSON-lines batch file")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

type batchLine struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

func runBatch(*cobra.Command, []string) {
	ops, err := readBatchFile(flagBatchFile)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot read batch file")
	}

	t, closeDB, err := openTree()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open tree")
	}
	defer closeDB()

	if err := t.BatchUpdate(ops); err != nil {
		log.Fatal().Err(err).Msg("batch update failed")
	}
	fmt.Printf("applied %d ops\n", len(ops))
}

func readBatchFile(path string) ([]tree.Op, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var ops []tree.Op
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var bl batchLine
		if err := json.Unmarshal(line, &bl); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		key, err := hex.DecodeString(bl.Key)
		if err != nil {
			return nil, fmt.Errorf("line %d: decode key: %w", lineNo, err)
		}
		switch bl.Op {
		case "insert":
			value, err := hex.DecodeString(bl.Value)
			if err != nil {
				return nil, fmt.Errorf("line %d: decode value: %w", lineNo, err)
			}
			ops = append(ops, tree.Insert(key, value))
		case "delete":
			ops = append(ops, tree.Delete(key))
		default:
			return nil, fmt.Errorf("line %d: unknown op %q", lineNo, bl.Op)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return ops, nil
}
