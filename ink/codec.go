package ink

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// FileName is the name of the stroke file inside a note directory.
const FileName = "strokes.paths"

const maxLineSize = 16 << 20

var errNoPoints = errors.New("stroke has no points")

// Report summarizes a tolerant decode.
type Report struct {
	Lines   int
	Skipped int
}

// FormatStroke renders s as one strokes.paths line, without the newline:
//
//	<width>|<argb>|<x1>,<y1>;<x2>,<y2>;...
//
// The color is written as a signed 32-bit integer.
func FormatStroke(s Stroke) string {
	var b strings.Builder
	b.WriteString(formatFloat(s.Width))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(int64(int32(s.Color)), 10))
	b.WriteByte('|')
	for i, p := range s.Points {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(formatFloat(p.X))
		b.WriteByte(',')
		b.WriteString(formatFloat(p.Y))
	}
	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseStroke parses a single strokes.paths line.
func ParseStroke(line string) (Stroke, error) {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) != 3 {
		return Stroke{}, fmt.Errorf("expected 3 fields, got %d", len(parts))
	}

	width, err := parseFinite(parts[0])
	if err != nil {
		return Stroke{}, fmt.Errorf("invalid width: %w", err)
	}
	color, err := ParseColor(parts[1])
	if err != nil {
		return Stroke{}, err
	}

	var points []Point
	for _, item := range strings.Split(parts[2], ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		xy := strings.Split(item, ",")
		if len(xy) != 2 {
			return Stroke{}, fmt.Errorf("invalid point %q", item)
		}
		x, err := parseFinite(xy[0])
		if err != nil {
			return Stroke{}, fmt.Errorf("invalid x in %q: %w", item, err)
		}
		y, err := parseFinite(xy[1])
		if err != nil {
			return Stroke{}, fmt.Errorf("invalid y in %q: %w", item, err)
		}
		points = append(points, Point{x, y})
	}
	if len(points) == 0 {
		return Stroke{}, errNoPoints
	}

	return Stroke{Points: points, Color: color, Width: width}, nil
}

var errNotFinite = errors.New("not a finite number")

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

// ParseColor accepts a signed or unsigned 32-bit decimal, or #AARRGGBB.
func ParseColor(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid color %q: %w", s, err)
		}
		if len(s) == 7 {
			v |= 0xFF000000
		}
		return uint32(v), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if v < -1<<31 || v > 1<<32-1 {
		return 0, fmt.Errorf("color %q out of range", s)
	}
	return uint32(v), nil
}

func EncodeStrokes(w io.Writer, strokes []Stroke) error {
	bw := bufio.NewWriter(w)
	for _, s := range strokes {
		if len(s.Points) == 0 {
			continue
		}
		if _, err := bw.WriteString(FormatStroke(s)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeStrokes reads strokes.paths content. Malformed lines are skipped
// and counted in the report; only read errors are returned.
func DecodeStrokes(r io.Reader) ([]Stroke, Report, error) {
	var (
		strokes []Stroke
		rep     Report
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rep.Lines++
		s, err := ParseStroke(line)
		if err != nil {
			rep.Skipped++
			continue
		}
		strokes = append(strokes, s)
	}
	return strokes, rep, scanner.Err()
}

func MarshalStrokes(strokes []Stroke) []byte {
	var buf bytes.Buffer
	_ = EncodeStrokes(&buf, strokes)
	return buf.Bytes()
}

func UnmarshalStrokes(data []byte) ([]Stroke, Report) {
	strokes, rep, _ := DecodeStrokes(bytes.NewReader(data))
	return strokes, rep
}
