package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/drummonds/pdftopng/config"
	"github.com/drummonds/pdftopng/domain"
	"github.com/drummonds/pdftopng/engine/pdfrenderer"
)

// maxParentDepth bounds the walk up the page tree when looking for inherited attributes
const maxParentDepth = 32

// Inspection is the structural summary of a PDF read without rendering it
type Inspection struct {
	PageCount int
	// Pages holds the displayed size of each page in points, zero when the page has no usable MediaBox
	Pages []pdfrenderer.Size
}

// PlannedPage is one page a conversion would write
type PlannedPage struct {
	Index  int
	Number int
	Path   string
	Width  int // predicted pixels, 0 if unknown
	Height int
}

// Plan is what Convert would do for a configuration
type Plan struct {
	PageCount int
	Pages     []PlannedPage
}

// Inspect reads the page tree of the PDF at path. An encrypted file is
// decrypted with password; a wrong or missing password is an authentication error.
func Inspect(path, password string) (inspection *Inspection, err error) {
	pdfFile, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.FileNotFoundError(path, err)
	}
	if err != nil {
		return nil, domain.IOError(path, "unable to open PDF", err)
	}
	defer pdfFile.Close()

	info, err := pdfFile.Stat()
	if err != nil {
		return nil, domain.IOError(path, "unable to stat PDF", err)
	}

	// The pdf reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered while inspecting PDF", "path", path, "panic", r)
			inspection = nil
			err = domain.FileFormatError(path, fmt.Errorf("malformed PDF: %v", r))
		}
	}()

	reader, err := pdf.NewReaderEncrypted(pdfFile, info.Size(), singlePassword(password))
	if errors.Is(err, pdf.ErrInvalidPassword) {
		if password == "" {
			return nil, domain.AuthenticationError("PDF is encrypted, a password is required", err)
		}
		return nil, domain.AuthenticationError("incorrect PDF password", err)
	}
	if err != nil {
		return nil, domain.FileFormatError(path, err)
	}

	numPages := reader.NumPage()
	inspection = &Inspection{
		PageCount: numPages,
		Pages:     make([]pdfrenderer.Size, 0, numPages),
	}
	// pdf pages are 1-based
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		inspection.Pages = append(inspection.Pages, displayedSize(reader.Page(pageNum).V))
	}
	Logger.Debug("Inspected PDF", "path", path, "pages", numPages)
	return inspection, nil
}

// singlePassword offers password once; the reader stops asking when it gets ""
func singlePassword(password string) func() string {
	offered := false
	return func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	}
}

func inherited(page pdf.Value, key string) pdf.Value {
	node := page
	for depth := 0; depth < maxParentDepth && !node.IsNull(); depth++ {
		if v := node.Key(key); !v.IsNull() {
			return v
		}
		node = node.Key("Parent")
	}
	return pdf.Value{}
}

// displayedSize is the MediaBox size with /Rotate applied
func displayedSize(page pdf.Value) pdfrenderer.Size {
	box := inherited(page, "MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return pdfrenderer.Size{}
	}
	size := pdfrenderer.Size{
		Width:  math.Abs(box.Index(2).Float64() - box.Index(0).Float64()),
		Height: math.Abs(box.Index(3).Float64() - box.Index(1).Float64()),
	}
	if rotate := inherited(page, "Rotate").Int64(); rotate%180 != 0 {
		size.Width, size.Height = size.Height, size.Width
	}
	return size
}

// PlanConversion inspects the input and lists the files Convert would write,
// with the pixel sizes the configured backend renders. It has no side effects.
func PlanConversion(cfg config.Configuration) (*Plan, error) {
	inspection, err := Inspect(cfg.InputPath, cfg.Password)
	if err != nil {
		return nil, err
	}
	indices, err := ResolvePageRange(inspection.PageCount, cfg.StartPage, cfg.EndPage)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		PageCount: inspection.PageCount,
		Pages:     make([]PlannedPage, 0, len(indices)),
	}
	for _, index := range indices {
		size := inspection.Pages[index]
		width, height := scaledToWidth(
			pdfrenderer.PixelSize(cfg.Backend, size.Width, cfg.DPI),
			pdfrenderer.PixelSize(cfg.Backend, size.Height, cfg.DPI),
			cfg.MaxWidth,
		)
		plan.Pages = append(plan.Pages, PlannedPage{
			Index:  index,
			Number: index + 1,
			Path:   OutputPath(cfg, index),
			Width:  width,
			Height: height,
		})
	}
	return plan, nil
}
