package artifact

import "testing"

func TestSanitizeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"my report (final).docx", "my_report__final_.docx"},
		{".pdf", "document.pdf"},
		{"no_extension", "no_extension"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeFilenameLongStem(t *testing.T) {
	long := ""
	for i := 0; i < 150; i++ {
		long += "a"
	}
	got := SanitizeFilename(long + ".pdf")
	if len(got) != maxStemLength+len(".pdf") {
		t.Fatalf("len = %d, want %d", len(got), maxStemLength+len(".pdf"))
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"report.PDF":  "pdf",
		"archive.ZIP": "zip",
		"noext":       "",
	}
	for in, want := range cases {
		if got := Extension(in); got != want {
			t.Errorf("Extension(%q) = %q, want %q", in, got, want)
		}
	}
}
