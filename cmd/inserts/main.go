package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/schollz/progressbar/v3"

	"github.com/youruser/cardinserts/internal/cards"
	"github.com/youruser/cardinserts/internal/config"
	imagepkg "github.com/youruser/cardinserts/internal/image"
	"github.com/youruser/cardinserts/internal/pipeline"
	"github.com/youruser/cardinserts/internal/progress"
	"github.com/youruser/cardinserts/internal/util"
)

type Args struct {
	URL        string  `arg:"positional" help:"card listing URL, e.g. https://limitlesstcg.com/cards/DRI"`
	CSV        string  `arg:"--csv" help:"read Number,ImageURL rows from a CSV instead of scraping URL"`
	Set        string  `arg:"--set" help:"set name used for output paths (defaults to the last URL segment)"`
	Output     string  `arg:"-o" help:"output root directory"`
	Workers    int     `arg:"-w" help:"concurrent downloads"`
	Font       string  `arg:"--font" help:"TTF/OTF file for the index label"`
	FontSize   float64 `arg:"--font-size" help:"label font size"`
	LabelWidth int     `arg:"--label-width" help:"zero-padded label width"`
	From       int     `arg:"--from" help:"first card index to generate"`
	To         int     `arg:"--to" help:"last card index to generate"`
	ExportCSV  string  `arg:"--export-csv" help:"also save the card list as a Number,ImageURL CSV"`
	PDFOnly    bool    `arg:"--pdf-only" help:"build the PDF from inserts already in the output directory"`
	Quiet      bool    `arg:"-q" help:"no progress bar"`
}

func (Args) Description() string {
	return "Generates numbered card-sleeve inserts and a printable PDF from a card listing."
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load(".env")
	args := Args{
		Output:     cfg.OutputDir,
		Workers:    cfg.Workers,
		Font:       cfg.FontPath,
		FontSize:   cfg.FontSize,
		LabelWidth: cfg.Insert.LabelWidth,
	}
	p := arg.MustParse(&args)
	if args.URL == "" && args.CSV == "" && !(args.PDFOnly && args.Set != "") {
		p.WriteHelp(os.Stderr)
		return errors.New("a listing URL or --csv file is required")
	}
	cfg.FontPath, cfg.FontSize = args.Font, args.FontSize
	cfg.Insert.LabelWidth = args.LabelWidth

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := util.NewHTTPClient(cfg.HTTPTimeout, args.Workers)
	var lister cards.Lister = cards.NewHTMLLister(args.URL, client)
	set := args.Set
	if args.CSV != "" {
		lister = cards.CSVLister{Path: args.CSV}
		if set == "" {
			set = trimExt(filepath.Base(args.CSV))
		}
	}
	if set == "" {
		set = cards.SetNameFromURL(args.URL)
	}

	insertsDir, docPath := pipeline.OutputPaths(args.Output, set)
	opts := pipeline.Options{
		Workers:      args.Workers,
		InsertsDir:   insertsDir,
		DocumentPath: docPath,
		Title:        set + " inserts",
		Insert:       cfg.Insert,
		Layout:       cfg.Layout,
		Font:         cfg.LoadFont(),
	}
	fetcher := imagepkg.NewHTTPFetcher(client, cfg.HTTPTimeout)

	if args.PDFOnly {
		rep, err := pipeline.New(fetcher, progress.LogSink{Logger: logger}, opts).LayoutDir(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d inserts on %d pages.\nPDF created at: %s\n", len(rep.Artifacts), len(rep.Document.Pages), rep.DocumentPath)
		return nil
	}

	logger.Info("fetching cards", "source", firstNonEmpty(args.CSV, args.URL))
	records, err := lister.List(ctx)
	if err != nil {
		return err
	}
	records = cards.Filter(records, cards.FilterOptions{From: args.From, To: args.To})
	if len(records) == 0 {
		return cards.ErrSourceListEmpty
	}
	if args.ExportCSV != "" {
		if err := cards.WriteCSV(args.ExportCSV, records, cfg.Insert.LabelWidth); err != nil {
			return err
		}
		logger.Info("card list saved", "path", args.ExportCSV, "cards", len(records))
	}

	var sinks progress.Multi
	var bar *progressbar.ProgressBar
	if args.Quiet {
		sinks = append(sinks, progress.LogSink{Logger: logger})
	} else {
		bar = newBar(len(records))
		sinks = append(sinks, barSink(bar), progress.LogSink{Logger: warnOnly(logger)})
	}

	rep, err := pipeline.New(fetcher, sinks, opts).RunLister(ctx, cards.StaticLister(records))
	if bar != nil {
		bar.Close()
	}
	if err != nil {
		return err
	}

	for _, r := range rep.Skipped() {
		fmt.Fprintf(os.Stderr, "skipped %s: %s\n", r.Record.Label(cfg.Insert.LabelWidth), r.Skip.Reason())
	}
	fmt.Printf("All done. %d inserts on %d pages.\nPDF created at: %s\n", len(rep.Artifacts), len(rep.Document.Pages), rep.DocumentPath)
	return nil
}

func newBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Creating inserts"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
		progressbar.OptionSetWriter(os.Stderr),
	)
}

// barSink advances the bar once per finished card.
func barSink(bar *progressbar.ProgressBar) progress.Sink {
	return progress.SinkFunc(func(e progress.Event) {
		switch e.Stage {
		case progress.StageCompose, progress.StageSkip:
			bar.Add(1)
		}
	})
}

// warnOnly keeps the log quiet while the bar is drawn.
func warnOnly(l *slog.Logger) *slog.Logger {
	return slog.New(levelFilter{Handler: l.Handler(), min: slog.LevelWarn})
}

type levelFilter struct {
	slog.Handler
	min slog.Level
}

func (h levelFilter) Enabled(ctx context.Context, lvl slog.Level) bool {
	return lvl >= h.min && h.Handler.Enabled(ctx, lvl)
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
