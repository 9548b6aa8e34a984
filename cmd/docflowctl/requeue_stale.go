package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var requeueStaleTimeout time.Duration

var requeueStaleCmd = &cobra.Command{
	Use:   "requeue-stale",
	Short: "Return Processing tasks older than --timeout back to Queued",
	RunE:  runRequeueStale,
}

func init() {
	requeueStaleCmd.Flags().DurationVar(&requeueStaleTimeout, "timeout", 300*time.Second, "age of a claim before it is considered stale")
}

func runRequeueStale(cmd *cobra.Command, args []string) error {
	s, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := s.ReleaseStale(cmd.Context(), requeueStaleTimeout)
	if err != nil {
		return fmt.Errorf("requeue stale: %w", err)
	}
	fmt.Printf("released %d task(s)\n", n)
	return nil
}
