package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/youruser/cardinserts/internal/api"
	"github.com/youruser/cardinserts/internal/config"
	imagepkg "github.com/youruser/cardinserts/internal/image"
	"github.com/youruser/cardinserts/internal/util"
)

func main() {
	cfg := config.Load(".env")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := util.EnsureDir(cfg.OutputDir); err != nil {
		logger.Error("cannot create output directory", "path", cfg.OutputDir, "error", err)
		os.Exit(1)
	}

	client := util.NewHTTPClient(cfg.HTTPTimeout, cfg.Workers)
	fetcher := imagepkg.NewHTTPFetcher(client, cfg.HTTPTimeout)
	srv := api.NewServer(cfg, client, fetcher, cfg.LoadFont(), logger)

	if cfg.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := srv.Handler()

	logger.Info("starting server", "addr", "http://localhost:"+cfg.Port, "output", cfg.OutputDir)
	if err := r.Run(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
