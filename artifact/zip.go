package artifact

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

// deflateCompressor swaps the standard library's DEFLATE for
// klauspost/compress's faster implementation; the container format is
// unchanged. It is registered on each zip.Writer, since archive/zip
// already registers Deflate globally and a second global registration
// panics.
func deflateCompressor(w io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(w, flate.DefaultCompression)
}

// Pack writes markdownPath as "document.md" and, if imagesDir is
// non-empty and exists, its contents under their relative path, into a
// new ZIP archive at outputPath.
func Pack(markdownPath, imagesDir, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, deflateCompressor)
	defer zw.Close()

	if err := addFile(zw, markdownPath, "document.md"); err != nil {
		return err
	}

	if imagesDir == "" {
		return nil
	}
	if _, err := os.Stat(imagesDir); err != nil {
		return nil
	}
	base := filepath.Dir(imagesDir)
	return filepath.Walk(imagesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
}

func addFile(zw *zip.Writer, srcPath, arcName string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = arcName
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add %s to archive: %w", arcName, err)
	}
	_, err = io.Copy(w, f)
	return err
}
