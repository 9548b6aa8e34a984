// Command docflowctl is a thin administrative CLI over a docflow Store:
// it carries no business logic of its own, only the plumbing to open the
// configured database and dispatch into the Store operations docflow
// already defines.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"

	"github.com/hearthform/docflow/store"
)

var (
	dbPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docflowctl",
	Short: "Administer a docflow task queue",
	Long: `docflowctl operates directly on a docflow tasks.db file: inspect
queue health, force-requeue stale claims, or run retention cleanup
without starting the full worker pool.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/tasks.db", "path to tasks.db")
	rootCmd.AddCommand(statsCmd, requeueStaleCmd, cleanupCmd, resetCmd)
}

func openStore(cmd *cobra.Command) (*store.Store, *bun.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if err := store.Init(cmd.Context(), db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init schema: %w", err)
	}
	return store.New(db), db, nil
}
