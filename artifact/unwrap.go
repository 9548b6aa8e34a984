package artifact

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoDocument indicates an uploaded ZIP contained no root-level file
// matching a supported extension.
var ErrNoDocument = errors.New("zip archive contains no supported document")

// ErrMultipleDocuments indicates an uploaded ZIP contained more than one
// root-level file matching a supported extension; only single-document
// archives may be unwrapped.
var ErrMultipleDocuments = errors.New("zip archive contains more than one document")

// UnwrapSingleDocument extracts the sole supported document from the
// root of a ZIP archive at zipPath into destDir, returning its extracted
// path and original name. Entries inside subdirectories are not
// candidates. supported must not include "zip" itself.
func UnwrapSingleDocument(zipPath, destDir string, supported map[string]bool) (path, name string, err error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", "", fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var match *zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.ContainsRune(f.Name, '/') {
			continue
		}
		if !supported[Extension(f.Name)] {
			continue
		}
		if match != nil {
			return "", "", ErrMultipleDocuments
		}
		match = f
	}
	if match == nil {
		return "", "", ErrNoDocument
	}

	name = filepath.Base(match.Name)
	outPath := filepath.Join(destDir, SanitizeFilename(name))
	if err := extractEntry(match, outPath); err != nil {
		return "", "", err
	}
	return outPath, name, nil
}

func extractEntry(f *zip.File, outPath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
