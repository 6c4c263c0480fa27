package ink

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var (
	ErrEmpty    = errors.New("nothing to export")
	ErrTooLarge = errors.New("image too large")
)

// MaxImageSide bounds both sides of any rendered image, in pixels.
const MaxImageSide = 16384

func checkSize(w, h float64) error {
	if !(w <= MaxImageSide && h <= MaxImageSide) {
		return fmt.Errorf("%w: %.0fx%.0f exceeds %d px per side", ErrTooLarge, w, h, MaxImageSide)
	}
	return nil
}

// Renderer draws strokes onto a gg context. A one-point stroke is drawn as
// a filled dot of radius max(width/2, DotRadius).
type Renderer struct {
	DotRadius  float64
	Background color.Color
}

func NewRenderer(dotRadius float64) Renderer {
	return Renderer{DotRadius: dotRadius, Background: color.White}
}

func (r Renderer) DrawStroke(dc *gg.Context, s Stroke) {
	if len(s.Points) == 0 {
		return
	}
	dc.SetColor(NRGBA(s.Color))
	if s.IsDot() {
		p := s.Points[0]
		dc.DrawCircle(p.X, p.Y, math.Max(s.Width/2, r.DotRadius))
		dc.Fill()
		return
	}
	dc.SetLineWidth(s.Width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(s.Points[0].X, s.Points[0].Y)
	for _, p := range s.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

// Draw paints the full stroke list and then the live stroke, if any, on
// top.
func (r Renderer) Draw(dc *gg.Context, strokes []Stroke, live *Stroke) {
	for _, s := range strokes {
		r.DrawStroke(dc, s)
	}
	if live != nil {
		r.DrawStroke(dc, *live)
	}
}

// Image renders one frame of a w×h canvas.
func (r Renderer) Image(w, h int, strokes []Stroke, live *Stroke) image.Image {
	dc := gg.NewContext(w, h)
	if r.Background != nil {
		dc.SetColor(r.Background)
		dc.Clear()
	}
	r.Draw(dc, strokes, live)
	return dc.Image()
}

// Frame renders the canvas at its configured size. Unbounded canvases
// are sized to their content, which fails with ErrTooLarge when a stroke
// lies far off the origin.
func (c *Canvas) Frame(r Renderer) (image.Image, error) {
	opts := c.Options()
	strokes := c.Strokes()
	live := c.Live()
	w, h := math.Ceil(opts.Width), math.Ceil(opts.Height)
	if w <= 0 || h <= 0 {
		all := strokes
		if live != nil {
			all = append(all[:len(all):len(all)], *live)
		}
		_, _, maxX, maxY, ok := bounds(all)
		if !ok {
			return r.Image(1, 1, nil, nil), nil
		}
		w, h = math.Max(math.Ceil(maxX)+1, 1), math.Max(math.Ceil(maxY)+1, 1)
	}
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	return r.Image(int(w), int(h), strokes, live), nil
}

func bounds(strokes []Stroke) (minX, minY, maxX, maxY float64, ok bool) {
	for _, s := range strokes {
		x0, y0, x1, y1, has := s.Bounds()
		if !has {
			continue
		}
		if !ok {
			minX, minY, maxX, maxY, ok = x0, y0, x1, y1, true
			continue
		}
		minX = math.Min(minX, x0)
		minY = math.Min(minY, y0)
		maxX = math.Max(maxX, x1)
		maxY = math.Max(maxY, y1)
	}
	return
}

type ExportOptions struct {
	Caption  string
	Padding  float64
	Scale    float64
	FontSize float64
}

// WritePNG renders strokes cropped to their bounding box, with an
// optional caption line above the drawing.
func (r Renderer) WritePNG(w io.Writer, strokes []Stroke, opts ExportOptions) error {
	minX, minY, maxX, maxY, ok := bounds(strokes)
	if !ok {
		return ErrEmpty
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 14
	}

	var face font.Face
	captionHeight := 0.0
	if opts.Caption != "" {
		ttfFont, err := truetype.Parse(gomono.TTF)
		if err != nil {
			return fmt.Errorf("failed to parse font: %v", err)
		}
		face = truetype.NewFace(ttfFont, &truetype.Options{
			Size:    opts.FontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		defer face.Close()
		captionHeight = opts.FontSize * 1.8
	}

	contentW := (maxX - minX + 2*opts.Padding) * opts.Scale
	contentH := (maxY - minY + 2*opts.Padding) * opts.Scale
	if err := checkSize(contentW, contentH+captionHeight); err != nil {
		return err
	}
	imageWidth := int(math.Ceil(contentW))
	imageHeight := int(math.Ceil(contentH + captionHeight))
	if imageWidth < 1 {
		imageWidth = 1
	}
	if imageHeight < 1 {
		imageHeight = 1
	}

	dc := gg.NewContext(imageWidth, imageHeight)
	bg := r.Background
	if bg == nil {
		bg = color.White
	}
	dc.SetColor(bg)
	dc.Clear()

	if face != nil {
		dc.SetFontFace(face)
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(opts.Caption, opts.Padding*opts.Scale, captionHeight/2, 0, 0.5)
	}

	dc.Push()
	dc.Translate(0, captionHeight)
	dc.Scale(opts.Scale, opts.Scale)
	dc.Translate(opts.Padding-minX, opts.Padding-minY)
	r.Draw(dc, strokes, nil)
	dc.Pop()

	return dc.EncodePNG(w)
}

// ExportPNG renders to memory first so a failed export leaves no file
// behind.
func (r Renderer) ExportPNG(path string, strokes []Stroke, opts ExportOptions) error {
	var buf bytes.Buffer
	if err := r.WritePNG(&buf, strokes, opts); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
