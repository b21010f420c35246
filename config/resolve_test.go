package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drummonds/pdftopng/domain"
	"github.com/drummonds/pdftopng/internal/pdffixture"
)

func intPtr(v int) *int { return &v }

// testArgs writes a one page PDF and returns default args pointing at it
func testArgs(t *testing.T) Args {
	t.Helper()
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "sample.pdf")
	require.NoError(t, pdffixture.Write(pdfPath, pdffixture.Pages(1)))

	args := DefaultArgs(pdfPath)
	args.OutputDir = filepath.Join(dir, "out")
	return args
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindValidation), "expected validation error, got %v", err)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, field, de.Field)
}

func TestResolveDefaults(t *testing.T) {
	args := testArgs(t)

	cfg, err := Resolve(args)
	require.NoError(t, err)

	assert.Equal(t, DefaultDPI, cfg.DPI)
	assert.Equal(t, DefaultPrefix, cfg.Prefix)
	assert.Equal(t, DefaultZeroPad, cfg.ZeroPad)
	assert.Zero(t, cfg.StartPage)
	assert.Zero(t, cfg.EndPage)
	assert.Equal(t, "pdfium", cfg.Backend)
	assert.Equal(t, args.OutputDir, cfg.PageDir())

	info, err := os.Stat(args.OutputDir)
	require.NoError(t, err, "output directory should be created")
	assert.True(t, info.IsDir())
}

func TestResolveCreatesNestedOutputDir(t *testing.T) {
	args := testArgs(t)
	args.OutputDir = filepath.Join(args.OutputDir, "a", "b", "c")

	_, err := Resolve(args)
	require.NoError(t, err)
	assert.DirExists(t, args.OutputDir)

	// Resolving again with an existing directory is fine
	_, err = Resolve(args)
	require.NoError(t, err)
}

func TestResolveDryRunCreatesNothing(t *testing.T) {
	args := testArgs(t)
	args.DryRun = true

	cfg, err := Resolve(args)
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
	assert.NoDirExists(t, args.OutputDir)
}

func TestResolveMissingInput(t *testing.T) {
	args := testArgs(t)
	args.InputPath = filepath.Join(t.TempDir(), "missing.pdf")

	_, err := Resolve(args)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindFileNotFound), "got %v", err)
	assert.NoDirExists(t, args.OutputDir)
}

func TestResolveInputMustBePDFFile(t *testing.T) {
	args := testArgs(t)
	textPath := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("hello"), 0644))

	args.InputPath = textPath
	_, err := Resolve(args)
	requireField(t, err, "input")

	args.InputPath = t.TempDir()
	_, err = Resolve(args)
	requireField(t, err, "input")
}

func TestResolveUppercaseExtension(t *testing.T) {
	args := testArgs(t)
	upper := filepath.Join(filepath.Dir(args.InputPath), "SCAN.PDF")
	require.NoError(t, os.Rename(args.InputPath, upper))
	args.InputPath = upper

	_, err := Resolve(args)
	require.NoError(t, err)
}

func TestResolveRejectsInvalidArgs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Args)
		field  string
	}{
		{"zero dpi", func(a *Args) { a.DPI = 0 }, "dpi"},
		{"negative dpi", func(a *Args) { a.DPI = -72 }, "dpi"},
		{"zero start page", func(a *Args) { a.StartPage = intPtr(0) }, "start-page"},
		{"negative end page", func(a *Args) { a.EndPage = intPtr(-1) }, "end-page"},
		{"start after end", func(a *Args) { a.StartPage, a.EndPage = intPtr(3), intPtr(2) }, "start-page"},
		{"zero pad too small", func(a *Args) { a.ZeroPad = 0 }, "zero-pad"},
		{"zero pad too large", func(a *Args) { a.ZeroPad = 10 }, "zero-pad"},
		{"prefix with separator", func(a *Args) { a.Prefix = "../page_" }, "prefix"},
		{"unknown backend", func(a *Args) { a.Backend = "ghostscript" }, "backend"},
		{"unknown compression", func(a *Args) { a.CompressionLevel = "extreme" }, "compression"},
		{"negative max width", func(a *Args) { a.MaxWidth = -1 }, "max-width"},
		{"empty output dir", func(a *Args) { a.OutputDir = "" }, "output-dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := testArgs(t)
			tt.mutate(&args)
			_, err := Resolve(args)
			requireField(t, err, tt.field)
		})
	}
}

func TestResolveOutputDirIsFile(t *testing.T) {
	args := testArgs(t)
	require.NoError(t, os.WriteFile(args.OutputDir, []byte("x"), 0644))

	_, err := Resolve(args)
	requireField(t, err, "output-dir")
}

func TestResolvePageBounds(t *testing.T) {
	args := testArgs(t)
	args.StartPage = intPtr(2)
	args.EndPage = intPtr(2)

	cfg, err := Resolve(args)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.StartPage)
	assert.Equal(t, 2, cfg.EndPage)
}

func TestResolveNormalisesChoices(t *testing.T) {
	args := testArgs(t)
	args.Backend = "FITZ"
	args.CompressionLevel = ""

	cfg, err := Resolve(args)
	require.NoError(t, err)
	assert.Equal(t, "fitz", cfg.Backend)
	assert.Equal(t, DefaultCompression, cfg.CompressionLevel)
}

func TestPageDirPerDocument(t *testing.T) {
	cfg := Configuration{InputPath: "/docs/annual report.pdf", OutputDir: "/out", PerDocumentDir: true}
	assert.Equal(t, filepath.Join("/out", "annual report"), cfg.PageDir())
}
