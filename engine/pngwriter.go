package engine

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/disintegration/imaging"

	"github.com/drummonds/pdftopng/config"
	"github.com/drummonds/pdftopng/domain"
)

// PNGWriter encodes rendered pages to PNG files
type PNGWriter struct {
	Compression png.CompressionLevel
	MaxWidth    int // 0 keeps the rendered width
}

// NewPNGWriter creates a writer using the configured compression and width limit
func NewPNGWriter(cfg config.Configuration) *PNGWriter {
	return &PNGWriter{
		Compression: compressionLevel(cfg.CompressionLevel),
		MaxWidth:    cfg.MaxWidth,
	}
}

func compressionLevel(name string) png.CompressionLevel {
	switch name {
	case "none":
		return png.NoCompression
	case "fast":
		return png.BestSpeed
	case "best":
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}

// Prepare flattens the page onto an opaque white background and applies the width limit
func (w *PNGWriter) Prepare(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat := imaging.Overlay(background, img, image.Pt(0, 0), 1.0)

	if w.MaxWidth > 0 && flat.Bounds().Dx() > w.MaxWidth {
		// Resize to max width while maintaining aspect ratio
		flat = imaging.Resize(flat, w.MaxWidth, 0, imaging.Lanczos)
	}
	return flat
}

// Write encodes img to path and returns the size of the written image
func (w *PNGWriter) Write(path string, img image.Image) (image.Point, error) {
	prepared := w.Prepare(img)

	outFile, err := os.Create(path)
	if err != nil {
		return image.Point{}, domain.IOError(path, "unable to create output image file", err)
	}
	if err := imaging.Encode(outFile, prepared, imaging.PNG, imaging.PNGCompressionLevel(w.Compression)); err != nil {
		outFile.Close()
		return image.Point{}, domain.IOError(path, "unable to encode PNG image", err)
	}
	if err := outFile.Close(); err != nil {
		return image.Point{}, domain.IOError(path, "unable to write output image file", err)
	}
	return prepared.Bounds().Size(), nil
}
