// Package cgo provides CGO bindings for native libraries.
// This package isolates all CGO code from the pure Go core.
//
// Sub-packages:
//   - mupdf: MuPDF text extraction for PDFs
package cgo
