package docflow

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
)

// hashFile computes the SHA-256 digest of path by streaming it, so
// large uploads never need to be buffered whole in memory.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// errOverLimit is an internal sentinel distinguishing "source exceeded
// limit" from any other copy failure; EnqueueTask translates it to
// ErrFileTooLarge.
var errOverLimit = errors.New("source exceeded limit")

// stageUpload streams src into a new file at destPath while computing its
// SHA-256 digest, so EnqueueTask never buffers a whole upload in memory.
// If more than limit bytes are read, the partial file is removed and
// errOverLimit is returned.
func stageUpload(destPath string, src io.Reader, limit int64) (hash string, size int64, err error) {
	out, err := os.Create(destPath)
	if err != nil {
		return "", 0, err
	}
	defer out.Close()

	h := sha256.New()
	w := io.MultiWriter(out, h)

	limited := io.LimitReader(src, limit+1)
	n, err := io.Copy(w, limited)
	if err != nil {
		os.Remove(destPath)
		return "", 0, err
	}
	if n > limit {
		os.Remove(destPath)
		return "", 0, errOverLimit
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
