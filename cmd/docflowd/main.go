// Command docflowd runs the docflow worker pool as a long-lived daemon:
// it opens the task database, builds the converter engines and the
// optional S3 publisher, starts the pool, and serves Prometheus metrics
// until interrupted.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"golang.org/x/sync/semaphore"

	_ "modernc.org/sqlite"

	docflow "github.com/hearthform/docflow"
	"github.com/hearthform/docflow/converter"
	"github.com/hearthform/docflow/metrics"
	"github.com/hearthform/docflow/publish"
	"github.com/hearthform/docflow/store"
)

var (
	dbPath      string
	dataDir     string
	metricsAddr string
	numWorkers  int
	officeSlots int

	s3Bucket   string
	s3Prefix   string
	s3Endpoint string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docflowd",
	Short: "Run the docflow conversion worker pool",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&dbPath, "db", "./data/tasks.db", "path to tasks.db")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "root for upload and result directories")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "listen address for /metrics, empty to disable")
	rootCmd.Flags().IntVar(&numWorkers, "workers", 3, "number of concurrent workers")
	rootCmd.Flags().IntVar(&officeSlots, "office-concurrency", 2, "max simultaneous office-suite conversions")
	rootCmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "publish results to this S3 bucket, empty to disable")
	rootCmd.Flags().StringVar(&s3Prefix, "s3-prefix", "results", "key prefix for published results")
	rootCmd.Flags().StringVar(&s3Endpoint, "s3-endpoint", "", "custom S3 endpoint for compatible stores")
}

func run(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := cmd.Context()

	cfg := docflow.DefaultConfig()
	cfg.NumWorkers = numWorkers
	cfg.OfficeConcurrency = officeSlots
	cfg.UploadDir = dataDir + "/uploads"
	cfg.ResultsDir = dataDir + "/results"

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	defer db.Close()
	if err := store.Init(ctx, db); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	st := store.New(db)

	sem := semaphore.NewWeighted(int64(cfg.OfficeConcurrency))
	direct := &converter.DirectEngine{Timeout: cfg.ConverterTimeout, Log: log}
	bridge := &converter.BridgeEngine{
		OfficeTimeout: cfg.ConverterTimeout,
		Sem:           sem,
		Direct:        direct,
		Log:           log,
	}
	dispatch := converter.NewDispatch(direct, bridge)

	var pub publish.Publisher
	if s3Bucket != "" {
		p, err := publish.NewS3Publisher(ctx, s3Bucket, s3Prefix, s3Endpoint,
			os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"))
		if err != nil {
			return fmt.Errorf("configure publisher: %w", err)
		}
		pub = p
	}

	pool := docflow.NewPool(st, dispatch, pub, cfg, log)
	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("start pool: %w", err)
	}
	log.Info("pool started", "workers", cfg.NumWorkers, "db", dbPath)

	var metricsSrv *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server", "err", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	stopTimeout := cfg.ConverterTimeout + time.Minute
	if err := pool.Stop(stopTimeout); err != nil {
		log.Warn("pool stop", "err", err)
	}
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}
