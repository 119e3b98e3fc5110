package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/youruser/cardinserts/internal/cards"
	"github.com/youruser/cardinserts/internal/config"
	imagepkg "github.com/youruser/cardinserts/internal/image"
	"github.com/youruser/cardinserts/internal/pipeline"
	"github.com/youruser/cardinserts/internal/progress"
)

// Server runs insert jobs over HTTP.
type Server struct {
	cfg     config.Config
	client  *http.Client
	fetcher imagepkg.Fetcher
	font    *imagepkg.Font
	jobs    *Jobs
	logger  *slog.Logger
}

// NewServer shares client and fetcher across all jobs.
func NewServer(cfg config.Config, client *http.Client, fetcher imagepkg.Fetcher, font *imagepkg.Font, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		client:  client,
		fetcher: fetcher,
		font:    font,
		jobs:    NewJobs(),
		logger:  logger,
	}
}

// Handler returns the gin engine with all routes registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, s)
	return r
}

type jobRequest struct {
	URL     string `json:"url"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Workers int    `json:"workers"`
}

// start creates a job for req and runs it in the background.
func (s *Server) start(req jobRequest) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	set := cards.SetNameFromURL(req.URL)
	job := s.jobs.New(req.URL, set, cancel)
	job.InsertsDir, job.DocumentPath = pipeline.OutputPaths(filepath.Join(s.cfg.OutputDir, job.ID), set)

	workers := s.cfg.Workers
	if req.Workers > 0 && req.Workers < workers {
		workers = req.Workers
	}
	logger := s.logger.With("job", job.ID)
	runner := pipeline.New(s.fetcher, progress.Multi{job.Events, progress.LogSink{Logger: logger}}, pipeline.Options{
		Workers:      workers,
		InsertsDir:   job.InsertsDir,
		DocumentPath: job.DocumentPath,
		Title:        set + " inserts",
		Insert:       s.cfg.Insert,
		Layout:       s.cfg.Layout,
		Font:         s.font,
	})
	lister := filtered{inner: cards.NewHTMLLister(req.URL, s.client), opt: cards.FilterOptions{From: req.From, To: req.To}}

	go func() {
		defer cancel()
		job.setRunning()
		rep, err := runner.RunLister(ctx, lister)
		cancelled := errors.Is(err, context.Canceled)
		if err != nil && !cancelled {
			progress.Emitter{Sink: job.Events}.Send(progress.StageError, "Error: "+err.Error(), 0)
			logger.Error("job failed", "error", err)
		}
		job.finish(rep, err, cancelled)
	}()
	return job
}

// filtered narrows a listing to an index range.
type filtered struct {
	inner cards.Lister
	opt   cards.FilterOptions
}

func (f filtered) List(ctx context.Context) ([]cards.Record, error) {
	recs, err := f.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	recs = cards.Filter(recs, f.opt)
	if len(recs) == 0 {
		return nil, cards.ErrSourceListEmpty
	}
	return recs, nil
}
