package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scribe/ink"
)

// pad maps a page of w×h canvas units onto cols×rows terminal cells.
type pad struct {
	cols, rows int
	w, h       float64
}

func newPad(cols, rows int, opts ink.Options) pad {
	cols = max(cols, 1)
	rows = max(rows, 1)
	p := pad{cols: cols, rows: rows, w: opts.Width, h: opts.Height}
	if p.w <= 0 || p.h <= 0 {
		p.w, p.h = float64(cols)*10, float64(rows)*20
	}
	return p
}

func (p pad) cellW() float64 { return p.w / float64(p.cols) }
func (p pad) cellH() float64 { return p.h / float64(p.rows) }

// toPoint returns the canvas point at the centre of a cell. Cells outside
// the pad map outside the page.
func (p pad) toPoint(col, row int) ink.Point {
	return ink.Point{
		X: (float64(col) + 0.5) * p.cellW(),
		Y: (float64(row) + 0.5) * p.cellH(),
	}
}

func (p pad) toCell(pt ink.Point) (int, int, bool) {
	col := int(math.Floor(pt.X / p.cellW()))
	row := int(math.Floor(pt.Y / p.cellH()))
	if col < 0 || row < 0 || col >= p.cols || row >= p.rows {
		return 0, 0, false
	}
	return col, row, true
}

type inkCell struct {
	on    bool
	color uint32
}

// raster marks every cell a stroke passes through. Later strokes paint
// over earlier ones; the live stroke goes last.
func (p pad) raster(strokes []ink.Stroke, live *ink.Stroke) [][]inkCell {
	cells := make([][]inkCell, p.rows)
	for i := range cells {
		cells[i] = make([]inkCell, p.cols)
	}
	mark := func(pt ink.Point, color uint32) {
		if col, row, ok := p.toCell(pt); ok {
			cells[row][col] = inkCell{on: true, color: color}
		}
	}
	step := math.Min(p.cellW(), p.cellH()) / 2
	draw := func(s ink.Stroke) {
		if len(s.Points) == 0 {
			return
		}
		mark(s.Points[0], s.Color)
		for i := 1; i < len(s.Points); i++ {
			a, b, ok := p.clip(s.Points[i-1], s.Points[i])
			if !ok {
				continue
			}
			mark(a, s.Color)
			n := int(math.Ceil(a.Dist(b) / step))
			for k := 1; k <= n; k++ {
				t := float64(k) / float64(n)
				mark(ink.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}, s.Color)
			}
		}
	}
	for _, s := range strokes {
		draw(s)
	}
	if live != nil {
		draw(*live)
	}
	return cells
}

// clip trims the segment a-b to the page rectangle (Liang-Barsky). It
// reports false when no part of the segment is on the page.
func (p pad) clip(a, b ink.Point) (ink.Point, ink.Point, bool) {
	for _, v := range []float64{a.X, a.Y, b.X, b.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return a, b, false
		}
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{{-dx, a.X}, {dx, p.w - a.X}, {-dy, a.Y}, {dy, p.h - a.Y}}
	for _, e := range edges {
		q, d := e[0], e[1]
		if q == 0 {
			if d < 0 {
				return a, b, false
			}
			continue
		}
		r := d / q
		if q < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}
	at := func(t float64) ink.Point { return ink.Point{X: a.X + dx*t, Y: a.Y + dy*t} }
	return at(t0), at(t1), true
}

func hexColor(argb uint32) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06X", argb&0xFFFFFF))
}

// render draws the cells on a white page, one styled run per color.
func (p pad) render(cells [][]inkCell) string {
	page := lipgloss.NewStyle().Background(lipgloss.Color("#FFFFFF"))
	var b strings.Builder
	for r, row := range cells {
		if r > 0 {
			b.WriteByte('\n')
		}
		for i := 0; i < len(row); {
			j := i
			for j < len(row) && row[j] == row[i] {
				j++
			}
			if row[i].on {
				b.WriteString(page.Foreground(hexColor(row[i].color)).Render(strings.Repeat("█", j-i)))
			} else {
				b.WriteString(page.Render(strings.Repeat(" ", j-i)))
			}
			i = j
		}
	}
	return b.String()
}
