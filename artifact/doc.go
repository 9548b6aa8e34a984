// Package artifact packages a conversion's output into a single ZIP file
// and sanitizes filenames used to name or address that output.
//
// archive/zip provides the container format; klauspost/compress/flate is
// registered as the DEFLATE implementation in place of the standard
// library's.
package artifact
