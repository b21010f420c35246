package pdfrenderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drummonds/pdftopng/domain"
	"github.com/drummonds/pdftopng/internal/pdffixture"
)

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("ghostscript")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghostscript")
}

func TestCheckIndex(t *testing.T) {
	assert.NoError(t, checkIndex(0, 1))
	assert.NoError(t, checkIndex(4, 5))
	assert.Error(t, checkIndex(5, 5))
	assert.Error(t, checkIndex(-1, 5))
}

func TestPixelSize(t *testing.T) {
	tests := []struct {
		points float64
		dpi    int
		pdfium int
		fitz   int
	}{
		{612, 72, 612, 612},
		{612, 150, 1275, 1275},
		{792, 150, 1651, 1650},
		{612, 200, 1700, 1700},
		{792, 200, 2200, 2200},
		{595, 100, 827, 827},
		{842, 100, 1170, 1170},
		{612, 22, 188, 187},
		{1, 100, 2, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.pdfium, PixelSize(BackendPDFium, tt.points, tt.dpi), "pdfium %vpt at %d dpi", tt.points, tt.dpi)
		assert.Equal(t, tt.fitz, PixelSize(BackendFitz, tt.points, tt.dpi), "fitz %vpt at %d dpi", tt.points, tt.dpi)
	}
	assert.Equal(t, PixelSize(BackendPDFium, 595, 100), PixelSize("", 595, 100))
}

func TestBackends(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping renderer integration test in short mode")
	}

	dir := t.TempDir()
	input := filepath.Join(dir, "sample.pdf")
	require.NoError(t, pdffixture.Write(input, []pdffixture.Page{
		{Width: pdffixture.LetterWidth, Height: pdffixture.LetterHeight, Text: "Hello Page 1"},
		{Width: pdffixture.A4Width, Height: pdffixture.A4Height, Text: "Hello Page 2"},
		{Width: pdffixture.LetterWidth, Height: pdffixture.LetterHeight, Text: "Hello Page 3"},
	}))
	garbage := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("not a pdf at all"), 0644))

	for _, backend := range []string{BackendPDFium, BackendFitz} {
		t.Run(backend, func(t *testing.T) {
			renderer, err := New(backend)
			require.NoError(t, err)
			defer renderer.Close()

			doc, err := renderer.Open(input, "")
			require.NoError(t, err)
			defer doc.Close()

			require.Equal(t, 3, doc.PageCount())

			size, err := doc.PageSize(1)
			require.NoError(t, err)
			assert.InDelta(t, 595, size.Width, 1)
			assert.InDelta(t, 842, size.Height, 1)

			for _, dpi := range []int{72, 144} {
				img, err := doc.RenderPage(0, dpi)
				require.NoError(t, err)
				bounds := img.Bounds()
				assert.Equal(t, PixelSize(backend, 612, dpi), bounds.Dx(), "width at %d dpi", dpi)
				assert.Equal(t, PixelSize(backend, 792, dpi), bounds.Dy(), "height at %d dpi", dpi)
			}

			img, err := doc.RenderPage(1, 100)
			require.NoError(t, err)
			assert.Equal(t, 827, img.Bounds().Dx())
			assert.Equal(t, 1170, img.Bounds().Dy())

			_, err = doc.RenderPage(3, 72)
			assert.Error(t, err, "index past the last page")

			_, err = renderer.Open(garbage, "")
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindFileFormat), "got %v", err)
		})
	}
}

func TestBackendsEncrypted(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping renderer integration test in short mode")
	}

	input := filepath.Join(t.TempDir(), "secret.pdf")
	require.NoError(t, pdffixture.WriteEncrypted(input, pdffixture.Pages(3), "secret123", "owner"))

	t.Run(BackendPDFium, func(t *testing.T) {
		renderer, err := New(BackendPDFium)
		require.NoError(t, err)
		defer renderer.Close()

		for _, password := range []string{"", "wrong"} {
			_, err := renderer.Open(input, password)
			require.Error(t, err, "password %q", password)
			assert.True(t, domain.IsKind(err, domain.KindAuthentication), "password %q: got %v", password, err)
		}

		doc, err := renderer.Open(input, "secret123")
		require.NoError(t, err)
		defer doc.Close()

		require.Equal(t, 3, doc.PageCount())
		for index := 0; index < doc.PageCount(); index++ {
			img, err := doc.RenderPage(index, 36)
			require.NoError(t, err)
			assert.Equal(t, 306, img.Bounds().Dx())
		}
	})

	// go-fitz has no way to supply a password
	t.Run(BackendFitz, func(t *testing.T) {
		renderer, err := New(BackendFitz)
		require.NoError(t, err)
		defer renderer.Close()

		for _, password := range []string{"", "wrong", "secret123"} {
			_, err := renderer.Open(input, password)
			require.Error(t, err, "password %q", password)
			assert.True(t, domain.IsKind(err, domain.KindAuthentication), "password %q: got %v", password, err)
		}
	})
}
