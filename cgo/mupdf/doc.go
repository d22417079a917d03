// Package mupdf reads PDFs through MuPDF via go-fitz.
// It implements the driven.PDFBackend interface.
//
// Build requires:
//   - CGO enabled (the bundled MuPDF static libraries are linked)
//
// Without CGO the package compiles to a stub whose Read returns
// domain.ErrNotImplemented, and extraction falls back to the pure Go backend.
package mupdf
