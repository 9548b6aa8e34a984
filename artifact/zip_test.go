package artifact

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestPackMarkdownOnly(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "report.md")
	if err := os.WriteFile(md, []byte("# hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.zip")

	if err := Pack(md, "", out); err != nil {
		t.Fatal(err)
	}

	r, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if len(r.File) != 1 || r.File[0].Name != "document.md" {
		t.Fatalf("zip entries = %+v, want single document.md", r.File)
	}
}

func TestPackWithImages(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "report.md")
	if err := os.WriteFile(md, []byte("# hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	imgDir := filepath.Join(dir, "report")
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(imgDir, "fig1.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.zip")

	if err := Pack(md, imgDir, out); err != nil {
		t.Fatal(err)
	}

	r, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	if !names["document.md"] {
		t.Error("missing document.md")
	}
	if !names["report/fig1.png"] {
		t.Errorf("missing report/fig1.png, got %v", names)
	}
}
