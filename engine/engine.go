package engine

import (
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/drummonds/pdftopng/config"
	"github.com/drummonds/pdftopng/domain"
	"github.com/drummonds/pdftopng/engine/pdfrenderer"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// PageResult describes one written page image
type PageResult struct {
	Index  int // zero-based
	Number int // 1-based, as in the file name
	Path   string
	Width  int
	Height int
	// PageSize is the page size in points the image was rendered from
	PageSize pdfrenderer.Size
}

// Result summarises a conversion run
type Result struct {
	RunID         ulid.ULID
	PageCount     int
	RenderedPages int
	OutputPaths   []string
	Pages         []PageResult
}

// Converter renders the selected pages of a document to PNG files, one page at a time
type Converter struct {
	Renderer pdfrenderer.Renderer
	// Writer defaults to NewPNGWriter(cfg) when nil
	Writer *PNGWriter
	// OnStart is called once the page range is known
	OnStart func(total int)
	// OnPage is called after each page is written
	OnPage func(done, total int, page PageResult)
}

// NewConverter creates a converter that renders with renderer
func NewConverter(renderer pdfrenderer.Renderer) *Converter {
	return &Converter{Renderer: renderer}
}

// NewRunID generates a ULID identifying a conversion run
func NewRunID(now time.Time) (ulid.ULID, error) {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	return ulid.New(ulid.Timestamp(now), entropy)
}

// Convert opens the input, resolves the page range and writes one PNG per
// selected page. It stops at the first failure; files already written are
// left in place. The document is closed on every return path.
// cfg.DryRun is not consulted here, use PlanConversion for a dry run.
func (c *Converter) Convert(cfg config.Configuration) (*Result, error) {
	runID, err := NewRunID(time.Now())
	if err != nil {
		return nil, err
	}
	logger := Logger.With("run", runID.String(), "input", cfg.InputPath)

	doc, err := c.Renderer.Open(cfg.InputPath, cfg.Password)
	if err != nil {
		logger.Error("Unable to open PDF document", "error", err)
		return nil, err
	}
	defer func() {
		if err := doc.Close(); err != nil {
			logger.Warn("Failed to close PDF document", "error", err)
		}
	}()

	pageCount := doc.PageCount()
	logger.Debug("PDF has pages", "count", pageCount)

	indices, err := ResolvePageRange(pageCount, cfg.StartPage, cfg.EndPage)
	if err != nil {
		logger.Error("Invalid page range", "start", cfg.StartPage, "end", cfg.EndPage, "pages", pageCount, "error", err)
		return nil, err
	}

	pageDir := cfg.PageDir()
	if err := os.MkdirAll(pageDir, 0755); err != nil {
		return nil, domain.IOError(pageDir, "failed to create output directory", err)
	}

	writer := c.Writer
	if writer == nil {
		writer = NewPNGWriter(cfg)
	}

	result := &Result{
		RunID:       runID,
		PageCount:   pageCount,
		OutputPaths: make([]string, 0, len(indices)),
		Pages:       make([]PageResult, 0, len(indices)),
	}
	if c.OnStart != nil {
		c.OnStart(len(indices))
	}

	for i, index := range indices {
		pageSize, err := doc.PageSize(index)
		if err != nil {
			logger.Error("Unable to read page size", "page", index+1, "error", err)
			return nil, domain.RenderError(index, err)
		}
		logger.Debug("Rendering page", "page", index+1, "widthPt", pageSize.Width, "heightPt", pageSize.Height, "dpi", cfg.DPI)

		img, err := doc.RenderPage(index, cfg.DPI)
		if err != nil {
			logger.Error("Unable to render page", "page", index+1, "error", err)
			return nil, domain.RenderError(index, err)
		}

		path := OutputPath(cfg, index)
		size, err := writer.Write(path, img)
		if err != nil {
			logger.Error("Unable to write page image", "page", index+1, "path", path, "error", err)
			return nil, err
		}

		page := PageResult{
			Index:    index,
			Number:   index + 1,
			Path:     path,
			Width:    size.X,
			Height:   size.Y,
			PageSize: pageSize,
		}
		result.Pages = append(result.Pages, page)
		result.OutputPaths = append(result.OutputPaths, path)
		result.RenderedPages++
		logger.Info("Page converted", "page", page.Number, "path", path, "width", page.Width, "height", page.Height)

		if c.OnPage != nil {
			c.OnPage(i+1, len(indices), page)
		}
	}

	logger.Info("Conversion complete", "pages", pageCount, "rendered", result.RenderedPages, "outputDir", pageDir)
	return result, nil
}
