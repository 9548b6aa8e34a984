package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Mark every Processing task Failed (recover a crashed deployment)",
	Long: `reset wraps ResetStartup, the same operation a Pool runs once at
process start. Run it manually when a prior docflow process was killed
without a clean shutdown and you want the crashed instance's in-flight
claims failed out before starting a new one.`,
	RunE: runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	s, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := s.ResetStartup(cmd.Context())
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	fmt.Printf("failed %d orphaned task(s)\n", n)
	return nil
}
