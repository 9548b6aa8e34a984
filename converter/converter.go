package converter

import "context"

// Result is the outcome of a successful conversion: the markdown file and,
// if any images were extracted, the directory holding them.
type Result struct {
	MarkdownPath string
	ImagesDir    string
}

// Converter is the abstract capability the queue core depends on. Concrete
// implementations spawn an external process; the core knows nothing about
// marker, LibreOffice, or any other specific engine.
type Converter interface {
	// Convert transforms inputPath into a markdown document under
	// outputDir. A non-zero exit from the underlying engine, or exceeding
	// the engine's configured timeout, is reported as an error satisfying
	// errors.Is against ErrConverterFailed / ErrConverterTimeout.
	Convert(ctx context.Context, inputPath, outputDir string) (Result, error)
}
