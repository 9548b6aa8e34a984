package converter

import "strings"

// Dispatch is a static mapping from lowercased file extension (without the
// leading dot) to the Converter capability that handles it.
type Dispatch struct {
	table map[string]Converter
}

// NewDispatch builds a Dispatch from direct and bridge engines:
// pdf/epub/pptx/xlsx go to direct, doc/docx/odt/rtf/xls go to bridge.
func NewDispatch(direct, bridge Converter) *Dispatch {
	return &Dispatch{
		table: map[string]Converter{
			"pdf":  direct,
			"epub": direct,
			"pptx": direct,
			"xlsx": direct,
			"doc":  bridge,
			"docx": bridge,
			"odt":  bridge,
			"rtf":  bridge,
			"xls":  bridge,
		},
	}
}

// For returns the Converter registered for ext (with or without a leading
// dot, case-insensitive). Returns ErrUnsupportedFormat if none is
// registered.
func (d *Dispatch) For(ext string) (Converter, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	c, ok := d.table[ext]
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	return c, nil
}

// Supports reports whether ext has a registered converter.
func (d *Dispatch) Supports(ext string) bool {
	_, err := d.For(ext)
	return err == nil
}

// Extensions returns the set of lowercased extensions this Dispatch
// handles, suitable for artifact.UnwrapSingleDocument's supported set.
func (d *Dispatch) Extensions() map[string]bool {
	set := make(map[string]bool, len(d.table))
	for ext := range d.table {
		set[ext] = true
	}
	return set
}
