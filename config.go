package docflow

import "time"

// Config holds the typed options recognized by the core. Unknown keys
// are a compile-time error: there is no dynamic map here.
type Config struct {
	// NumWorkers is the number of concurrent Workers in a Pool.
	NumWorkers int

	// PollInterval is the idle poll delay between ClaimNext attempts.
	PollInterval time.Duration

	// StaleTimeout is how long a claim may sit in Processing before the
	// reaper considers it hung.
	StaleTimeout time.Duration

	// StaleCheckInterval is the reaper's run period.
	StaleCheckInterval time.Duration

	// OfficeConcurrency bounds simultaneous office-suite subprocesses.
	OfficeConcurrency int

	// MaxFileSize is the enqueue size ceiling, in bytes.
	MaxFileSize int64

	// CleanupDays is the retention cutoff for CleanupOlderThan.
	CleanupDays int

	// ConverterTimeout is the per-conversion wall-clock limit.
	ConverterTimeout time.Duration

	// UploadDir is the root directory staged uploads are written under,
	// one subdirectory per task id.
	UploadDir string

	// ResultsDir is the root directory conversion artifacts are written
	// under, one subdirectory per task id.
	ResultsDir string

	// SyncPoolSize bounds the number of synchronous CPU/I/O helpers
	// (hashing, zipping, publishing) that may run concurrently across
	// the whole process, so the claim/poll loop never blocks on them
	// directly.
	SyncPoolSize int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		NumWorkers:         3,
		PollInterval:       time.Second,
		StaleTimeout:       300 * time.Second,
		StaleCheckInterval: 60 * time.Second,
		OfficeConcurrency:  2,
		MaxFileSize:        50 * 1024 * 1024,
		CleanupDays:        7,
		ConverterTimeout:   300 * time.Second,
		UploadDir:          "./data/uploads",
		ResultsDir:         "./data/results",
		SyncPoolSize:       4,
	}
}
