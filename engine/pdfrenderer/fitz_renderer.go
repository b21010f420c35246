package pdfrenderer

import (
	"errors"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/drummonds/pdftopng/domain"
)

// FitzRenderer implements PDF rendering using go-fitz (requires CGo and MuPDF)
type FitzRenderer struct {
}

// NewFitzRenderer creates a new Fitz-based PDF renderer
func NewFitzRenderer() (*FitzRenderer, error) {
	return &FitzRenderer{}, nil
}

// Open opens a PDF with MuPDF. go-fitz has no way to authenticate, so any
// password protected document is reported as an authentication failure.
func (r *FitzRenderer) Open(path, password string) (Document, error) {
	doc, err := fitz.New(path)
	if errors.Is(err, fitz.ErrNeedsPassword) {
		if password == "" {
			return nil, domain.AuthenticationError("PDF is encrypted, a password is required", err)
		}
		return nil, domain.AuthenticationError("the fitz backend cannot decrypt PDFs, use the pdfium backend", err)
	}
	if err != nil {
		return nil, domain.FileFormatError(path, err)
	}
	Logger.Debug("Opened PDF with fitz", "path", path, "pages", doc.NumPage())
	return &fitzDocument{doc: doc}, nil
}

// Close cleans up resources (no-op for Fitz renderer as each document is closed by its owner)
func (r *FitzRenderer) Close() error {
	return nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

// PageSize uses the page bound, which MuPDF reports at 72 DPI
func (d *fitzDocument) PageSize(index int) (Size, error) {
	if err := checkIndex(index, d.doc.NumPage()); err != nil {
		return Size{}, err
	}
	bound, err := d.doc.Bound(index)
	if err != nil {
		return Size{}, err
	}
	return Size{Width: float64(bound.Dx()), Height: float64(bound.Dy())}, nil
}

func (d *fitzDocument) RenderPage(index, dpi int) (image.Image, error) {
	if err := checkIndex(index, d.doc.NumPage()); err != nil {
		return nil, err
	}
	img, err := d.doc.ImageDPI(index, float64(dpi))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
