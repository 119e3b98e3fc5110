// Package config provides centralized configuration for the insert generator.
// Values come from environment variables, optionally seeded from a .env file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/youruser/cardinserts/internal/deck"
	imagepkg "github.com/youruser/cardinserts/internal/image"
)

// Config holds all configuration values.
type Config struct {
	// Port is the HTTP server listen port.
	Port string

	// OutputDir is the root under which each set gets its own directory.
	OutputDir string

	// FontPath is a TTF/OTF file for the index label. Empty uses Go Bold.
	FontPath string

	// FontSize is the label size in points at the insert resolution.
	FontSize float64

	// Workers bounds concurrent image downloads. Zero means one per CPU.
	Workers int

	// HTTPTimeout bounds each outgoing request.
	HTTPTimeout time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	Insert imagepkg.Config
	Layout deck.Config
}

// Load reads configuration from the environment, applying defaults. Files
// named in envFiles are loaded first; variables already set win.
func Load(envFiles ...string) Config {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				slog.Warn("cannot load env file", "path", f, "error", err)
			}
		}
	}

	ins := imagepkg.DefaultConfig()
	ins.BlurSigma = envFloat("INSERT_BLUR", ins.BlurSigma)
	ins.CornerRadius = envFloat("INSERT_CORNER_RADIUS", ins.CornerRadius)
	ins.StrokeWidth = envInt("INSERT_STROKE_WIDTH", ins.StrokeWidth)
	ins.LabelWidth = envInt("INSERT_LABEL_WIDTH", ins.LabelWidth)

	lay := deck.DefaultConfig()
	lay.Cols = envInt("LAYOUT_COLS", lay.Cols)
	lay.Rows = envInt("LAYOUT_ROWS", lay.Rows)
	lay.MarginX = envFloat("LAYOUT_MARGIN_X", lay.MarginX)
	lay.MarginY = envFloat("LAYOUT_MARGIN_Y", lay.MarginY)
	lay.Gap = envFloat("LAYOUT_GAP", lay.Gap)

	return Config{
		Port:        envOr("PORT", "8080"),
		OutputDir:   envOr("OUTPUT_DIR", "output"),
		FontPath:    envOr("FONT_PATH", "pokemon_solid.ttf"),
		FontSize:    envFloat("FONT_SIZE", 144),
		Workers:     envInt("WORKERS", 4),
		HTTPTimeout: envDuration("HTTP_TIMEOUT", 30*time.Second),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		Insert:      ins,
		Layout:      lay,
	}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadFont loads the configured label font, logging when it falls back to
// the bundled face.
func (c Config) LoadFont() *imagepkg.Font {
	path := c.FontPath
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			slog.Debug("label font not found, using bundled font", "path", path)
			path = ""
		}
	}
	f, err := imagepkg.LoadFont(path, c.FontSize)
	if err != nil {
		slog.Warn("cannot load label font, using bundled font", "path", path, "error", err)
	}
	return f
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
