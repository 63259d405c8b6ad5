package cmd

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dapperlabs/hubt/store/badgerstore"
	"github.com/dapperlabs/hubt/tree"
)

var (
	flagDBDir    string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "hubtctl",
	Short: "Inspect and mutate a Hot Unified Binary Tree stored in a badger file",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setLogLevel()
	},
}

// Execute runs the CLI, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDBDir, "db", "d", "",
		"path to the badger database directory backing the tree")
	_ = rootCmd.MarkPersistentFlagRequired("db")
	rootCmd.PersistentFlags().StringVarP(&flagLogLevel, "loglevel", "l", "info",
		"log level (panic, fatal, error, warn, info, debug)")

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func setLogLevel() {
	level, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		log.Fatal().Str("loglevel", flagLogLevel).Msg("unsupported log level")
	}
	zerolog.SetGlobalLevel(level)
}

// openTree opens the badger database at flagDBDir and wraps it as a Tree.
// The caller must invoke the returned close func when done.
func openTree() (*tree.Tree, func(), error) {
	db, err := badger.Open(badger.DefaultOptions(flagDBDir).WithLogger(nil))
	if err != nil {
		return nil, nil, fmt.Errorf("open badger db at %s: %w", flagDBDir, err)
	}
	s := badgerstore.New(db, badgerstore.WithLogger(log.Logger))
	t, err := tree.New(s, tree.WithLogger(log.Logger))
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("new tree: %w", err)
	}
	return t, func() { db.Close() }, nil
}
