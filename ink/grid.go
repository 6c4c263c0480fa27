package ink

import "math"

type cell struct {
	x, y int
}

// grid is a uniform spatial hash from cell to the strokes that have at
// least one point in it. It only narrows candidates; the eraser still does
// the exact distance check.
type grid struct {
	size  float64
	cells map[cell]map[*Stroke]struct{}
}

func newGrid(size float64) *grid {
	if size <= 0 {
		size = 1
	}
	return &grid{size: size, cells: make(map[cell]map[*Stroke]struct{})}
}

func (g *grid) cellOf(p Point) cell {
	return cell{int(math.Floor(p.X / g.size)), int(math.Floor(p.Y / g.size))}
}

func (g *grid) add(s *Stroke) {
	for _, p := range s.Points {
		c := g.cellOf(p)
		set := g.cells[c]
		if set == nil {
			set = make(map[*Stroke]struct{})
			g.cells[c] = set
		}
		set[s] = struct{}{}
	}
}

func (g *grid) remove(s *Stroke) {
	for _, p := range s.Points {
		c := g.cellOf(p)
		set := g.cells[c]
		if set == nil {
			continue
		}
		delete(set, s)
		if len(set) == 0 {
			delete(g.cells, c)
		}
	}
}

func (g *grid) reset() {
	g.cells = make(map[cell]map[*Stroke]struct{})
}

// near returns every stroke with a point in a cell overlapping the square
// of half-side r around p.
func (g *grid) near(p Point, r float64) map[*Stroke]struct{} {
	lo := g.cellOf(Point{p.X - r, p.Y - r})
	hi := g.cellOf(Point{p.X + r, p.Y + r})
	out := make(map[*Stroke]struct{})
	span := (hi.x - lo.x + 1) * (hi.y - lo.y + 1)
	if span > len(g.cells) {
		for c, set := range g.cells {
			if c.x < lo.x || c.x > hi.x || c.y < lo.y || c.y > hi.y {
				continue
			}
			for s := range set {
				out[s] = struct{}{}
			}
		}
		return out
	}
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for s := range g.cells[cell{x, y}] {
				out[s] = struct{}{}
			}
		}
	}
	return out
}
