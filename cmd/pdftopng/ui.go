package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/drummonds/pdftopng/engine"
)

// pageProgress shows per-page conversion progress
type pageProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newPageProgress(w io.Writer) *pageProgress {
	return &pageProgress{w: w}
}

// Start creates the bar once the number of pages is known
func (p *pageProgress) Start(total int) {
	p.bar = progressbar.NewOptions(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Rendering"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (p *pageProgress) Page(done, total int, _ engine.PageResult) {
	if p.bar == nil {
		return
	}
	if err := p.bar.Set(done); err != nil {
		Logger.Debug("Unable to update progress bar", "error", err)
	}
}

// Abort leaves the bar where it stopped and moves to a fresh line
func (p *pageProgress) Abort() {
	if p.bar != nil && !p.bar.IsFinished() {
		fmt.Fprint(p.w, "\n")
	}
}

func success(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

func info(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(w, "ℹ %s\n", fmt.Sprintf(format, args...))
}

func failure(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

func printResult(w io.Writer, result *engine.Result, quiet bool) {
	if !quiet {
		fmt.Fprintf(w, "PDF pages: %d\n", result.PageCount)
		fmt.Fprintf(w, "Rendered pages: %d\n", result.RenderedPages)
	}
	for _, path := range result.OutputPaths {
		fmt.Fprintln(w, path)
	}
	if !quiet {
		success(w, "Converted %d page(s)", result.RenderedPages)
	}
}

func printPlan(w io.Writer, plan *engine.Plan) {
	info(w, "Dry run, nothing will be written")
	fmt.Fprintf(w, "PDF pages: %d\n", plan.PageCount)
	fmt.Fprintf(w, "Pages to render: %d\n", len(plan.Pages))
	for _, page := range plan.Pages {
		if page.Width == 0 || page.Height == 0 {
			fmt.Fprintf(w, "%s\t(size unknown)\n", page.Path)
			continue
		}
		fmt.Fprintf(w, "%s\t%dx%d\n", page.Path, page.Width, page.Height)
	}
}
