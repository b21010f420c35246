package pdfrenderer

import (
	"fmt"
	"image"
	"log/slog"
	"math"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// Backend names accepted by New
const (
	BackendPDFium = "pdfium"
	BackendFitz   = "fitz"
)

// Size is a page size in PDF points (1/72 inch)
type Size struct {
	Width  float64
	Height float64
}

// Renderer opens PDF documents for rasterization
type Renderer interface {
	// Open opens the PDF at path. An empty password means none was supplied.
	// Encrypted documents opened without the right password fail with an
	// authentication error, unreadable files with a file format error.
	Open(path, password string) (Document, error)

	// Close cleans up any resources used by the renderer
	Close() error
}

// Document is an opened PDF, owned by a single caller until Close
type Document interface {
	PageCount() int

	// PageSize returns the size of the zero-based page in points
	PageSize(index int) (Size, error)

	// RenderPage rasterizes the zero-based page at dpi
	RenderPage(index, dpi int) (image.Image, error)

	Close() error
}

// New creates the renderer for the named backend
func New(backend string) (Renderer, error) {
	switch backend {
	case "", BackendPDFium:
		return NewPDFiumRenderer()
	case BackendFitz:
		return NewFitzRenderer()
	default:
		return nil, fmt.Errorf("unknown renderer backend %q", backend)
	}
}

// PixelSize is the number of pixels backend renders a length of points at dpi.
// pdfium rounds the scaled length up. MuPDF scales in single precision and
// rounds up after snapping values within 0.001 of an integer.
func PixelSize(backend string, points float64, dpi int) int {
	if backend == BackendFitz {
		scaled := float32(points)*float32(float64(dpi)/72) - 0.001
		return int(math.Ceil(float64(scaled)))
	}
	return int(math.Ceil(points * (float64(dpi) / 72)))
}

func checkIndex(index, pageCount int) error {
	if index < 0 || index >= pageCount {
		return fmt.Errorf("page index %d out of range [0, %d)", index, pageCount)
	}
	return nil
}
