package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/drummonds/pdftopng/config"
	"github.com/drummonds/pdftopng/domain"
	"github.com/drummonds/pdftopng/engine"
	"github.com/drummonds/pdftopng/engine/pdfrenderer"
)

var version = "dev"

// Exit codes
const (
	ExitSuccess        = 0
	ExitFailure        = 1
	ExitValidation     = 2
	ExitInputNotFound  = 3
	ExitAuthentication = 4
	ExitPageRange      = 5
	ExitRender         = 6
	ExitIO             = 7
	ExitFileFormat     = 8
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	config.Logger = Logger
	engine.Logger = Logger
	pdfrenderer.Logger = Logger
}

type options struct {
	outputDir      string
	dpi            int
	prefix         string
	zeroPad        int
	startPage      int
	endPage        int
	password       string
	backend        string
	compression    string
	maxWidth       int
	perDocumentDir bool
	dryRun         bool
	quiet          bool
	verbose        bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pdftopng <input.pdf>",
		Short: "Convert the pages of a PDF document to PNG images",
		Long: `pdftopng renders each page of a PDF document to a PNG file.

Files are named {prefix}{page number}.png with the 1-based page number
zero padded, for example page_001.png, page_002.png.`,
		Example: `  pdftopng report.pdf -o ./images
  pdftopng report.pdf -o ./images --dpi 300 --start-page 2 --end-page 4
  pdftopng secret.pdf -o ./images --pwd secret123
  pdftopng report.pdf -o ./images --dry-run`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return domain.ValidationError("input", fmt.Sprintf("exactly one input PDF is required, got %d arguments", len(args)))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.outputDir, "output-dir", "o", config.DefaultOutputDir, "output directory")
	flags.IntVar(&opts.dpi, "dpi", config.DefaultDPI, "render resolution in DPI")
	flags.StringVar(&opts.prefix, "prefix", config.DefaultPrefix, "output file name prefix")
	flags.IntVar(&opts.zeroPad, "zero-pad", config.DefaultZeroPad, "zero padding width of the page number")
	flags.IntVar(&opts.startPage, "start-page", 0, "first page to convert, 1-based inclusive (default first page)")
	flags.IntVar(&opts.endPage, "end-page", 0, "last page to convert, 1-based inclusive (default last page)")
	flags.StringVar(&opts.password, "pwd", "", "password of an encrypted PDF")
	flags.StringVar(&opts.backend, "backend", config.DefaultBackend, "rendering backend: pdfium or fitz")
	flags.StringVar(&opts.compression, "compression", config.DefaultCompression, "PNG compression: default, none, fast or best")
	flags.IntVar(&opts.maxWidth, "max-width", 0, "scale pages down to at most this many pixels wide (0 disables)")
	flags.BoolVar(&opts.perDocumentDir, "per-document-dir", false, "write pages into a sub-directory named after the input file")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print the files that would be written and exit")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only print output paths")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return domain.ValidationError("flags", err.Error())
	})

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pdftopng version %s\n", version)
		},
	}
}

// buildArgs maps flags onto config.Args, page flags only count when given
func buildArgs(cmd *cobra.Command, input string, opts *options) config.Args {
	args := config.Args{
		InputPath:        input,
		OutputDir:        opts.outputDir,
		DPI:              opts.dpi,
		Prefix:           opts.prefix,
		ZeroPad:          opts.zeroPad,
		Password:         opts.password,
		Backend:          opts.backend,
		CompressionLevel: opts.compression,
		MaxWidth:         opts.maxWidth,
		PerDocumentDir:   opts.perDocumentDir,
		DryRun:           opts.dryRun,
	}
	if cmd.Flags().Changed("start-page") {
		start := opts.startPage
		args.StartPage = &start
	}
	if cmd.Flags().Changed("end-page") {
		end := opts.endPage
		args.EndPage = &end
	}
	return args
}

func run(cmd *cobra.Command, input string, opts *options) error {
	logger := config.SetupLogging(config.LoadLogSettings(), opts.verbose)
	injectGlobals(logger)

	cfg, err := config.Resolve(buildArgs(cmd, input, opts))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if cfg.DryRun {
		plan, err := engine.PlanConversion(cfg)
		if err != nil {
			return err
		}
		printPlan(out, plan)
		return nil
	}

	renderer, err := pdfrenderer.New(cfg.Backend)
	if err != nil {
		return fmt.Errorf("unable to initialize %s renderer: %w", cfg.Backend, err)
	}
	defer renderer.Close()

	converter := engine.NewConverter(renderer)
	var progress *pageProgress
	if !opts.quiet {
		progress = newPageProgress(cmd.ErrOrStderr())
		converter.OnStart = progress.Start
		converter.OnPage = progress.Page
	}

	Logger.Info("Converting PDF", "input", cfg.InputPath, "outputDir", cfg.OutputDir, "dpi", cfg.DPI, "backend", cfg.Backend)
	result, err := converter.Convert(cfg)
	if err != nil {
		if progress != nil {
			progress.Abort()
		}
		return err
	}
	printResult(out, result, opts.quiet)
	return nil
}

// exitCode maps an error to the process exit status
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return ExitValidation
	case domain.KindFileNotFound:
		return ExitInputNotFound
	case domain.KindAuthentication:
		return ExitAuthentication
	case domain.KindPageRange:
		return ExitPageRange
	case domain.KindRender:
		return ExitRender
	case domain.KindIO:
		return ExitIO
	case domain.KindFileFormat:
		return ExitFileFormat
	default:
		return ExitFailure
	}
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		failure(cmd.ErrOrStderr(), "Error: %v", err)
		os.Exit(exitCode(err))
	}
}
