package converter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// safeStderrSubstrings lists warning lines known to be harmless noise from
// the underlying tools. A process that exits non-zero with only these
// lines on stderr is still treated as a failure; they are filtered purely
// so logs stay readable.
var safeStderrSubstrings = []string{
	"failed to launch javaldx",
}

// DirectEngine converts a single input file to markdown by invoking an
// external document-to-markdown command once per call. It satisfies
// Converter directly for formats marker can read natively (pdf, epub,
// pptx, xlsx).
type DirectEngine struct {
	// Binary is the executable invoked for each conversion. Defaults to
	// "marker_single" if empty.
	Binary string
	// Args, if set, are inserted before the positional input/output
	// arguments. Used in tests to stub the command.
	Args []string
	// Timeout bounds the wall-clock duration of a single invocation.
	Timeout time.Duration
	Log     *slog.Logger
}

func (e *DirectEngine) binary() string {
	if e.Binary != "" {
		return e.Binary
	}
	return "marker_single"
}

func (e *DirectEngine) log() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

// Convert implements Converter.
func (e *DirectEngine) Convert(ctx context.Context, inputPath, outputDir string) (Result, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, e.Args...), inputPath, "--output_dir", outputDir)
	cmd := exec.CommandContext(ctx, e.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return Result{}, fmt.Errorf("%w: %s timed out after %s", ErrConverterTimeout, e.binary(), timeout)
	}
	if err != nil {
		if !onlySafeWarnings(stderr.String()) {
			e.log().Error("direct converter failed", "binary", e.binary(), "input", inputPath, "stderr", stderr.String())
		}
		return Result{}, fmt.Errorf("%w: %v: %s", ErrConverterFailed, err, firstLine(stderr.String()))
	}
	logUnsafeWarnings(e.log(), e.binary(), stderr.String())

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return Result{
		MarkdownPath: filepath.Join(outputDir, stem, stem+".md"),
		ImagesDir:    filepath.Join(outputDir, stem),
	}, nil
}

func onlySafeWarnings(stderr string) bool {
	if strings.TrimSpace(stderr) == "" {
		return true
	}
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !containsAny(line, safeStderrSubstrings) {
			return false
		}
	}
	return true
}

func logUnsafeWarnings(log *slog.Logger, binary, stderr string) {
	if strings.TrimSpace(stderr) == "" {
		return
	}
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || containsAny(line, safeStderrSubstrings) {
			continue
		}
		log.Warn("converter stderr", "binary", binary, "line", line)
	}
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
