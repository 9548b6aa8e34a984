package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete task rows (and their result artifacts) older than --days",
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 7, "retention cutoff in days")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	s, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := s.CleanupOlderThan(cmd.Context(), cleanupDays)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	for _, r := range removed {
		if r.ResultPath == "" {
			continue
		}
		if err := os.Remove(r.ResultPath); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: remove %s: %v\n", r.ResultPath, err)
		}
	}
	fmt.Printf("removed %d task(s)\n", len(removed))
	return nil
}
