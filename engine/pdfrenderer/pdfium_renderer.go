package pdfrenderer

import (
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/klippa-app/go-pdfium"
	pdfium_errors "github.com/klippa-app/go-pdfium/errors"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"

	"github.com/drummonds/pdftopng/domain"
)

// PDFiumRenderer implements PDF rendering using go-pdfium with WebAssembly (pure Go, no CGo)
type PDFiumRenderer struct {
	pool     pdfium.Pool
	instance pdfium.Pdfium
}

// NewPDFiumRenderer creates a new PDFium-based PDF renderer using WebAssembly
func NewPDFiumRenderer() (*PDFiumRenderer, error) {
	// Conversion is sequential, one worker is enough
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PDFium WebAssembly: %w", err)
	}

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to get PDFium instance: %w", err)
	}

	return &PDFiumRenderer{
		pool:     pool,
		instance: instance,
	}, nil
}

// Open reads the PDF into memory and opens it, authenticating with password when given
func (r *PDFiumRenderer) Open(path, password string) (Document, error) {
	if r.instance == nil {
		return nil, errors.New("pdfium renderer is closed")
	}
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.IOError(path, "unable to read PDF file", err)
	}

	request := &requests.OpenDocument{File: &pdfBytes}
	if password != "" {
		request.Password = &password
	}
	doc, err := r.instance.OpenDocument(request)
	if errors.Is(err, pdfium_errors.ErrPassword) {
		if password == "" {
			return nil, domain.AuthenticationError("PDF is encrypted, a password is required", err)
		}
		return nil, domain.AuthenticationError("incorrect PDF password", err)
	}
	if err != nil {
		return nil, domain.FileFormatError(path, err)
	}

	pageCountResp, err := r.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		r.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		return nil, domain.FileFormatError(path, fmt.Errorf("unable to get page count: %w", err))
	}
	Logger.Debug("Opened PDF with pdfium", "path", path, "pages", pageCountResp.PageCount)

	return &pdfiumDocument{
		instance:  r.instance,
		document:  doc.Document,
		pageCount: pageCountResp.PageCount,
	}, nil
}

// Close cleans up resources used by the PDFium renderer
func (r *PDFiumRenderer) Close() error {
	if r.instance != nil {
		r.instance.Close()
		r.instance = nil
	}
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
	return nil
}

type pdfiumDocument struct {
	instance  pdfium.Pdfium
	document  references.FPDF_DOCUMENT
	pageCount int
	closed    bool
}

func (d *pdfiumDocument) PageCount() int {
	return d.pageCount
}

func (d *pdfiumDocument) page(index int) requests.Page {
	return requests.Page{
		ByIndex: &requests.PageByIndex{
			Document: d.document,
			Index:    index,
		},
	}
}

func (d *pdfiumDocument) PageSize(index int) (Size, error) {
	if err := checkIndex(index, d.pageCount); err != nil {
		return Size{}, err
	}
	resp, err := d.instance.GetPageSize(&requests.GetPageSize{Page: d.page(index)})
	if err != nil {
		return Size{}, err
	}
	return Size{Width: resp.Width, Height: resp.Height}, nil
}

func (d *pdfiumDocument) RenderPage(index, dpi int) (image.Image, error) {
	if err := checkIndex(index, d.pageCount); err != nil {
		return nil, err
	}
	pageRender, err := d.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI:  dpi,
		Page: d.page(index),
	})
	if err != nil {
		return nil, err
	}
	// The bitmap belongs to the WebAssembly instance until Cleanup, keep a copy
	img := imaging.Clone(pageRender.Result.Image)
	pageRender.Cleanup()
	return img, nil
}

func (d *pdfiumDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	_, err := d.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: d.document,
	})
	return err
}
