package converter

import "testing"

func TestDispatchFor(t *testing.T) {
	direct := &DirectEngine{Binary: "true"}
	bridge := &BridgeEngine{}
	d := NewDispatch(direct, bridge)

	cases := []struct {
		ext  string
		want Converter
	}{
		{"pdf", direct},
		{".PDF", direct},
		{"docx", bridge},
		{"DOCX", bridge},
		{"odt", bridge},
	}
	for _, c := range cases {
		got, err := d.For(c.ext)
		if err != nil {
			t.Fatalf("For(%q): unexpected error %v", c.ext, err)
		}
		if got != c.want {
			t.Errorf("For(%q) = %v, want %v", c.ext, got, c.want)
		}
	}
}

func TestDispatchUnsupported(t *testing.T) {
	d := NewDispatch(&DirectEngine{}, &BridgeEngine{})
	if _, err := d.For("exe"); err != ErrUnsupportedFormat {
		t.Errorf("For(exe) error = %v, want ErrUnsupportedFormat", err)
	}
	if d.Supports("exe") {
		t.Error("Supports(exe) = true, want false")
	}
	if !d.Supports("pdf") {
		t.Error("Supports(pdf) = false, want true")
	}
}

func TestDispatchExtensions(t *testing.T) {
	d := NewDispatch(&DirectEngine{}, &BridgeEngine{})
	exts := d.Extensions()
	for _, want := range []string{"pdf", "epub", "pptx", "xlsx", "doc", "docx", "odt", "rtf", "xls"} {
		if !exts[want] {
			t.Errorf("Extensions() missing %q", want)
		}
	}
	if exts["zip"] {
		t.Error("Extensions() should not include zip")
	}
}
