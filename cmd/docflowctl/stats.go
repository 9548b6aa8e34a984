package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print queue health counters",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	s, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	fmt.Printf("queued:             %d\n", stats.Queued)
	fmt.Printf("processing:         %d\n", stats.Processing)
	fmt.Printf("completed:          %d\n", stats.Completed)
	fmt.Printf("failed:             %d\n", stats.Failed)
	fmt.Printf("total:              %d\n", stats.Total)
	fmt.Printf("active workers:     %d\n", stats.ActiveWorkers)
	fmt.Printf("completed last hr:  %d\n", stats.CompletedLastHour)
	fmt.Printf("avg processing:     %s\n", stats.AvgProcessingTime)
	return nil
}
