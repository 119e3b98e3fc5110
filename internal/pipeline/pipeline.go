// Package pipeline turns a card listing into inserts and a print-ready PDF.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/youruser/cardinserts/internal/cards"
	"github.com/youruser/cardinserts/internal/deck"
	imagepkg "github.com/youruser/cardinserts/internal/image"
	"github.com/youruser/cardinserts/internal/progress"
)

// Options configures a run.
type Options struct {
	// Workers bounds concurrent fetch+compose tasks. Zero means one per CPU.
	Workers      int
	InsertsDir   string
	DocumentPath string
	Title        string
	Insert       imagepkg.Config
	Layout       deck.Config
	Font         *imagepkg.Font
}

// OutputPaths returns the insert directory and PDF path for a set under base.
func OutputPaths(base, set string) (insertsDir, document string) {
	root := filepath.Join(base, set)
	return filepath.Join(root, "inserts"), filepath.Join(root, set+"_inserts.pdf")
}

// Skip explains why a record produced no insert.
type Skip struct {
	Stage string `json:"stage"`
	Err   error  `json:"-"`
}

func (s *Skip) Reason() string {
	if s.Err == nil {
		return s.Stage
	}
	return s.Err.Error()
}

// Result is the outcome for one record: exactly one of Artifact and Skip is set.
type Result struct {
	Record   cards.Record       `json:"record"`
	Artifact *imagepkg.Artifact `json:"artifact,omitempty"`
	Skip     *Skip              `json:"skip,omitempty"`
}

// Report summarises a finished run.
type Report struct {
	Results      []Result
	Artifacts    []imagepkg.Artifact
	Document     *deck.Document
	DocumentPath string
}

// Skipped returns the results that produced no insert.
func (r *Report) Skipped() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Skip != nil {
			out = append(out, res)
		}
	}
	return out
}

// Runner executes the pipeline.
type Runner struct {
	fetcher imagepkg.Fetcher
	events  progress.Emitter
	opts    Options
}

func New(fetcher imagepkg.Fetcher, sink progress.Sink, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Font == nil {
		opts.Font = imagepkg.DefaultFont(144)
	}
	if sink == nil {
		sink = progress.Discard
	}
	return &Runner{fetcher: fetcher, events: progress.Emitter{Sink: sink}, opts: opts}
}

// RunLister lists the cards and runs the pipeline on them.
func (r *Runner) RunLister(ctx context.Context, l cards.Lister) (*Report, error) {
	records, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	r.events.Send(progress.StageList, fmt.Sprintf("Found %d cards.", len(records)), 0)
	return r.Run(ctx, records)
}

// Run composites every record and lays the successful ones out into the
// document. Unreachable or undecodable images are skipped; write failures
// and cancellation abort the run.
func (r *Runner) Run(ctx context.Context, records []cards.Record) (*Report, error) {
	results, err := r.Composite(ctx, records)
	if err != nil {
		return nil, err
	}

	var arts []imagepkg.Artifact
	for _, res := range results {
		if res.Artifact != nil {
			arts = append(arts, *res.Artifact)
		}
	}
	r.events.Send(progress.StageInserts, fmt.Sprintf("Inserts saved to: %s (%d of %d)", r.opts.InsertsDir, len(arts), len(records)), 0)

	rep, err := r.document(ctx, arts)
	if err != nil {
		return nil, err
	}
	rep.Results = results
	return rep, nil
}

// LayoutDir builds the document from the inserts already saved in
// InsertsDir, without fetching or composing anything.
func (r *Runner) LayoutDir(ctx context.Context) (*Report, error) {
	arts, err := deck.LoadArtifacts(r.opts.InsertsDir)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	r.events.Send(progress.StageInserts, fmt.Sprintf("Found %d inserts in %s", len(arts), r.opts.InsertsDir), 0)
	return r.document(ctx, arts)
}

func (r *Runner) document(ctx context.Context, arts []imagepkg.Artifact) (*Report, error) {
	doc, err := deck.Layout(arts, r.opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	doc.Title = r.opts.Title
	r.events.Send(progress.StageLayout, fmt.Sprintf("Laid out %d inserts on %d pages.", doc.Cards(), len(doc.Pages)), 0)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := doc.WriteFile(r.opts.DocumentPath); err != nil {
		return nil, &imagepkg.ArtifactWriteError{Path: r.opts.DocumentPath, Err: err}
	}
	r.events.Send(progress.StageDocument, "PDF created: "+r.opts.DocumentPath, 0)
	r.events.Send(progress.StageDone, "All done!", 0)

	return &Report{
		Artifacts:    arts,
		Document:     doc,
		DocumentPath: r.opts.DocumentPath,
	}, nil
}

// Composite builds and saves one insert per record on a bounded worker
// pool. Results come back sorted by card index.
func (r *Runner) Composite(ctx context.Context, records []cards.Record) ([]Result, error) {
	if len(records) == 0 {
		return nil, cards.ErrSourceListEmpty
	}
	seen := make(map[int]bool, len(records))
	for _, rec := range records {
		if seen[rec.Index] {
			return nil, fmt.Errorf("duplicate card index %d", rec.Index)
		}
		seen[rec.Index] = true
	}
	if err := r.opts.Insert.Validate(); err != nil {
		return nil, err
	}

	store := imagepkg.Store{Dir: r.opts.InsertsDir, DPI: r.opts.Insert.DPI}
	results := make([]Result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			res, err := r.composeOne(gctx, store, rec, i+1, len(records))
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Record.Index < results[j].Record.Index })
	return results, nil
}

func (r *Runner) composeOne(ctx context.Context, store imagepkg.Store, rec cards.Record, n, total int) (Result, error) {
	label := rec.Label(r.opts.Insert.LabelWidth)
	skip := func(stage string, err error) (Result, error) {
		r.events.Send(progress.StageSkip, fmt.Sprintf("Skipping %s: %v", label, err), rec.Index)
		return Result{Record: rec, Skip: &Skip{Stage: stage, Err: err}}, nil
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	data := rec.Data
	if data == nil {
		if rec.ImageURL == "" {
			return skip(progress.StageFetch, errors.New("missing image URL"))
		}
		r.events.Send(progress.StageFetch, fmt.Sprintf("Downloading image %d/%d: %s", n, total, rec.ImageURL), rec.Index)
		b, err := r.fetcher.Fetch(ctx, rec.ImageURL)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			return skip(progress.StageFetch, err)
		}
		data = b
	}

	ins, err := imagepkg.Compose(rec, data, r.opts.Font, r.opts.Insert)
	if err != nil {
		if errors.Is(err, imagepkg.ErrImageDecode) {
			return skip(progress.StageCompose, err)
		}
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	art, err := store.Save(ins)
	if err != nil {
		return Result{}, err
	}
	r.events.Send(progress.StageCompose, "Created insert "+art.Key, rec.Index)
	return Result{Record: rec, Artifact: &art}, nil
}
