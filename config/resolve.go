package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/drummonds/pdftopng/domain"
)

// Defaults used by the CLI when a flag is not given
const (
	DefaultOutputDir   = "output_png"
	DefaultDPI         = 200
	DefaultPrefix      = "page_"
	DefaultZeroPad     = 3
	DefaultBackend     = "pdfium"
	DefaultCompression = "default"
	maxZeroPad         = 9
)

var (
	backends          = []string{"pdfium", "fitz"}
	compressionLevels = []string{"default", "none", "fast", "best"}
)

// Args are the raw conversion inputs. Nil pointers mean "not given".
type Args struct {
	InputPath        string
	OutputDir        string
	DPI              int
	Prefix           string
	ZeroPad          int
	StartPage        *int
	EndPage          *int
	Password         string
	Backend          string
	CompressionLevel string
	MaxWidth         int
	PerDocumentDir   bool
	DryRun           bool
}

// Configuration is the validated form of Args. Zero StartPage/EndPage mean
// first/last page, an empty Password means none was supplied.
type Configuration struct {
	InputPath        string
	OutputDir        string
	DPI              int
	Prefix           string
	ZeroPad          int
	StartPage        int
	EndPage          int
	Password         string
	Backend          string
	CompressionLevel string
	MaxWidth         int
	PerDocumentDir   bool
	DryRun           bool
}

// DefaultArgs returns Args populated with the CLI defaults
func DefaultArgs(inputPath string) Args {
	return Args{
		InputPath:        inputPath,
		OutputDir:        DefaultOutputDir,
		DPI:              DefaultDPI,
		Prefix:           DefaultPrefix,
		ZeroPad:          DefaultZeroPad,
		Backend:          DefaultBackend,
		CompressionLevel: DefaultCompression,
	}
}

// PageDir is the directory the page images are written to
func (c Configuration) PageDir() string {
	if !c.PerDocumentDir {
		return c.OutputDir
	}
	stem := strings.TrimSuffix(filepath.Base(c.InputPath), filepath.Ext(c.InputPath))
	return filepath.Join(c.OutputDir, stem)
}

// Resolve validates args and returns the immutable configuration.
// Unless DryRun is set it creates the output directory.
func Resolve(args Args) (Configuration, error) {
	if err := checkInput(args.InputPath); err != nil {
		return Configuration{}, err
	}
	if args.DPI <= 0 {
		return Configuration{}, domain.ValidationError("dpi", fmt.Sprintf("dpi must be a positive integer, got %d", args.DPI))
	}
	if args.ZeroPad < 1 || args.ZeroPad > maxZeroPad {
		return Configuration{}, domain.ValidationError("zero-pad", fmt.Sprintf("zero-pad must be between 1 and %d, got %d", maxZeroPad, args.ZeroPad))
	}
	if strings.ContainsAny(args.Prefix, `/\`) {
		return Configuration{}, domain.ValidationError("prefix", fmt.Sprintf("prefix must not contain a path separator: %q", args.Prefix))
	}
	start, err := optionalPage("start-page", args.StartPage)
	if err != nil {
		return Configuration{}, err
	}
	end, err := optionalPage("end-page", args.EndPage)
	if err != nil {
		return Configuration{}, err
	}
	if start != 0 && end != 0 && start > end {
		return Configuration{}, domain.ValidationError("start-page", fmt.Sprintf("start-page (%d) cannot be greater than end-page (%d)", start, end))
	}
	backend := strings.ToLower(args.Backend)
	if backend == "" {
		backend = DefaultBackend
	}
	if !slices.Contains(backends, backend) {
		return Configuration{}, domain.ValidationError("backend", fmt.Sprintf("backend must be one of %s, got %q", strings.Join(backends, ", "), args.Backend))
	}
	compression := strings.ToLower(args.CompressionLevel)
	if compression == "" {
		compression = DefaultCompression
	}
	if !slices.Contains(compressionLevels, compression) {
		return Configuration{}, domain.ValidationError("compression", fmt.Sprintf("compression must be one of %s, got %q", strings.Join(compressionLevels, ", "), args.CompressionLevel))
	}
	if args.MaxWidth < 0 {
		return Configuration{}, domain.ValidationError("max-width", fmt.Sprintf("max-width must not be negative, got %d", args.MaxWidth))
	}
	if args.OutputDir == "" {
		return Configuration{}, domain.ValidationError("output-dir", "output directory must not be empty")
	}

	cfg := Configuration{
		InputPath:        args.InputPath,
		OutputDir:        args.OutputDir,
		DPI:              args.DPI,
		Prefix:           args.Prefix,
		ZeroPad:          args.ZeroPad,
		StartPage:        start,
		EndPage:          end,
		Password:         args.Password,
		Backend:          backend,
		CompressionLevel: compression,
		MaxWidth:         args.MaxWidth,
		PerDocumentDir:   args.PerDocumentDir,
		DryRun:           args.DryRun,
	}
	if err := ensureOutputDir(cfg.OutputDir, cfg.DryRun); err != nil {
		return Configuration{}, err
	}
	Logger.Debug("Configuration resolved", "input", cfg.InputPath, "outputDir", cfg.OutputDir, "dpi", cfg.DPI, "backend", cfg.Backend)
	return cfg, nil
}

func checkInput(inputPath string) error {
	if inputPath == "" {
		return domain.ValidationError("input", "input PDF path is required")
	}
	info, err := os.Stat(inputPath)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.FileNotFoundError(inputPath, err)
	}
	if err != nil {
		return domain.IOError(inputPath, "unable to stat input file", err)
	}
	if !info.Mode().IsRegular() {
		return domain.ValidationError("input", fmt.Sprintf("not a file: %s", inputPath))
	}
	if strings.ToLower(filepath.Ext(inputPath)) != ".pdf" {
		return domain.ValidationError("input", fmt.Sprintf("not a .pdf file: %s", inputPath))
	}
	return nil
}

func optionalPage(field string, page *int) (int, error) {
	if page == nil {
		return 0, nil
	}
	if *page <= 0 {
		return 0, domain.ValidationError(field, fmt.Sprintf("%s must be a positive integer, got %d", field, *page))
	}
	return *page, nil
}

// ensureOutputDir creates the output directory, MkdirAll is idempotent
func ensureOutputDir(dir string, dryRun bool) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return domain.ValidationError("output-dir", fmt.Sprintf("output path is not a directory: %s", dir))
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return domain.IOError(dir, "unable to stat output directory", err)
	}
	if dryRun {
		return nil
	}
	Logger.Info("Creating output directory", "path", dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.IOError(dir, "failed to create output directory", err)
	}
	return nil
}

