// Package deck lays card inserts out on printable pages.
//
// All lengths are PDF points (1" = 72pt). Placement coordinates use the PDF
// convention of a bottom-left page origin; rows are still numbered from the
// top of the page.
package deck

import (
	"errors"
	"fmt"
)

const Inch = 72.0

// Config is the physical geometry of a print sheet.
type Config struct {
	CardWidth  float64 `json:"card_width"`
	CardHeight float64 `json:"card_height"`
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`
	MarginX    float64 `json:"margin_x"`
	MarginY    float64 `json:"margin_y"`
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	Gap        float64 `json:"gap"`
}

// DefaultConfig fits nine 2.5"x3.5" cards on a US Letter page.
func DefaultConfig() Config {
	return Config{
		CardWidth:  2.5 * Inch,
		CardHeight: 3.5 * Inch,
		PageWidth:  8.5 * Inch,
		PageHeight: 11 * Inch,
		MarginX:    0.25 * Inch,
		MarginY:    0.25 * Inch,
		Cols:       3,
		Rows:       3,
		Gap:        0.05 * Inch,
	}
}

// PerPage is the number of cells on one page.
func (c Config) PerPage() int {
	return c.Cols * c.Rows
}

func (c Config) Validate() error {
	if c.Cols < 1 || c.Rows < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Cols, c.Rows)
	}
	if c.CardWidth <= 0 || c.CardHeight <= 0 || c.PageWidth <= 0 || c.PageHeight <= 0 {
		return errors.New("card and page sizes must be positive")
	}
	if c.MarginX < 0 || c.MarginY < 0 || c.Gap < 0 {
		return errors.New("margins and gap must not be negative")
	}
	w := c.MarginX + float64(c.Cols)*c.CardWidth + float64(c.Cols-1)*c.Gap
	h := c.MarginY + float64(c.Rows)*c.CardHeight + float64(c.Rows-1)*c.Gap
	if w > c.PageWidth+1e-9 || h > c.PageHeight+1e-9 {
		return fmt.Errorf("%dx%d grid of %.1fx%.1fpt cards does not fit a %.1fx%.1fpt page",
			c.Cols, c.Rows, c.CardWidth, c.CardHeight, c.PageWidth, c.PageHeight)
	}
	return nil
}

// Placement locates one card. Page, Row and Col are 0-based.
type Placement struct {
	Ordinal int     `json:"ordinal"`
	Page    int     `json:"page"`
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Place returns where the card at the 0-based ordinal goes. It depends only
// on ordinal and cfg.
func Place(ordinal int, cfg Config) Placement {
	col := ordinal % cfg.Cols
	row := (ordinal / cfg.Cols) % cfg.Rows
	return Placement{
		Ordinal: ordinal,
		Page:    ordinal / cfg.PerPage(),
		Row:     row,
		Col:     col,
		X:       cfg.MarginX + float64(col)*(cfg.CardWidth+cfg.Gap),
		Y:       cfg.PageHeight - cfg.MarginY - float64(row+1)*(cfg.CardHeight+cfg.Gap) + cfg.Gap,
	}
}

// PageCount is the number of pages n cards fill.
func PageCount(n int, cfg Config) int {
	per := cfg.PerPage()
	return (n + per - 1) / per
}
