package converter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hearthform/docflow/metrics"
)

// BridgeEngine converts office-suite formats (doc, docx, odt, rtf, xls) to
// markdown in two stages: an office suite rasterizes the input to PDF,
// then an embedded DirectEngine turns the PDF into markdown.
//
// The office-suite stage is serialized behind a process-wide weighted
// semaphore, since LibreOffice instances contend heavily on a shared user
// profile directory when run concurrently. The semaphore is acquired only
// for the office stage and released before the DirectEngine stage runs, so
// markdown extraction is not artificially constrained by the office
// concurrency cap.
type BridgeEngine struct {
	// OfficeBinary is the office-suite executable used for the PDF
	// rasterization stage. Defaults to "soffice".
	OfficeBinary string
	// OfficeTimeout bounds the office-suite stage. Callers normally set
	// it to the same wall-clock limit as the direct stage; it falls back
	// to 120s if unset.
	OfficeTimeout time.Duration
	// Sem gates concurrent office-suite invocations. Required.
	Sem *semaphore.Weighted
	// Direct performs the PDF-to-markdown stage.
	Direct *DirectEngine
	Log    *slog.Logger
}

func (e *BridgeEngine) officeBinary() string {
	if e.OfficeBinary != "" {
		return e.OfficeBinary
	}
	return "soffice"
}

func (e *BridgeEngine) log() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

// Convert implements Converter.
func (e *BridgeEngine) Convert(ctx context.Context, inputPath, outputDir string) (Result, error) {
	pdfDir, err := os.MkdirTemp(outputDir, "office-*")
	if err != nil {
		return Result{}, fmt.Errorf("%w: create office staging dir: %v", ErrConverterFailed, err)
	}
	defer os.RemoveAll(pdfDir)

	if err := e.Sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("%w: acquire office semaphore: %v", ErrConverterFailed, err)
	}
	metrics.OfficeSemaphoreInUse.Inc()
	pdfPath, err := e.toPDF(ctx, inputPath, pdfDir)
	metrics.OfficeSemaphoreInUse.Dec()
	e.Sem.Release(1)
	if err != nil {
		return Result{}, err
	}

	return e.Direct.Convert(ctx, pdfPath, outputDir)
}

func (e *BridgeEngine) toPDF(ctx context.Context, inputPath, outDir string) (string, error) {
	timeout := e.OfficeTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.officeBinary(),
		"--headless", "--convert-to", "pdf", "--outdir", outDir, inputPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: office conversion of %s timed out after %s", ErrConverterTimeout, inputPath, timeout)
		}
		if !onlySafeWarnings(stderr.String()) {
			e.log().Error("office stage failed", "input", inputPath, "stderr", stderr.String())
		}
		return "", fmt.Errorf("%w: office stage: %v: %s", ErrConverterFailed, err, firstLine(stderr.String()))
	}
	logUnsafeWarnings(e.log(), e.officeBinary(), stderr.String())

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(outDir, stem+".pdf"), nil
}
