package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scribe/ink"
	"scribe/notetree"
	"scribe/settings"
)

const (
	minPenWidth = 1
	maxPenWidth = 64
)

type sketch struct {
	note    notetree.Info
	canvas  *ink.Canvas
	pad     pad
	stop    func()
	presets []settings.Preset
	preset  int
	drawing bool
}

func (m *Model) prefs() settings.Prefs {
	if m.opts.Prefs == nil {
		return settings.Defaults()
	}
	prefs, err := m.opts.Prefs.Load()
	if err != nil {
		m.opts.Log.Warn().Err(err).Msg("failed to load preferences")
	}
	return prefs
}

// openSketch loads note's strokes onto a fresh canvas and starts saving
// every committed change in the background.
func (m *Model) openSketch(note notetree.Info) error {
	strokes, err := m.opts.Store.LoadStrokes(note.ID)
	if err != nil {
		return err
	}
	prefs := m.prefs()

	canvas := ink.NewCanvas(m.opts.Ink)
	canvas.Load(strokes)
	canvas.SetPen(ink.Black, prefs.PenWidth)
	canvas.SetEraserRadius(prefs.EraserWidth / 2)

	s := &sketch{
		note:    note,
		canvas:  canvas,
		pad:     newPad(m.width, m.height-padTop-padBottom, canvas.Options()),
		presets: prefs.PresetList(),
		preset:  -1,
	}
	s.stop = m.opts.Writer.Autosave(canvas, note.ID)
	m.sketch = s
	m.mode = ModeSketch
	m.opts.Log.Debug().Str("note", note.ID).Int("strokes", len(strokes)).Msg("opened sketch")
	return nil
}

// leaveSketch finishes any stroke in progress, waits for pending writes
// and remembers the pen and eraser sizes.
func (m *Model) leaveSketch() {
	s := m.sketch
	if s == nil {
		return
	}
	if live := s.canvas.Live(); live != nil && len(live.Points) > 0 {
		s.canvas.PointerUp(live.Points[len(live.Points)-1])
	}
	s.stop()
	m.opts.Writer.Flush()

	if m.opts.Prefs != nil {
		prefs := m.prefs()
		_, width := s.canvas.Pen()
		prefs.PenWidth = width
		prefs.EraserWidth = s.canvas.Options().EraserRadius * 2
		if err := m.opts.Prefs.Save(prefs); err != nil {
			m.opts.Log.Warn().Err(err).Msg("failed to save preferences")
		}
	}
	m.sketch = nil
	m.mode = ModeBrowse
	m.refresh()
	m.selectID(s.note.ID)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	s := m.sketch
	pt := s.pad.toPoint(msg.X, msg.Y-padTop)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			s.drawing = true
			s.canvas.PointerDown(pt)
		case tea.MouseButtonRight:
			if n := s.canvas.EraseAt(pt); n > 0 {
				m.succeed("Erased %d", n)
			}
		}
	case tea.MouseActionMotion:
		if s.drawing {
			s.canvas.PointerMove(pt)
		}
	case tea.MouseActionRelease:
		if s.drawing {
			s.drawing = false
			s.canvas.PointerUp(pt)
		}
	}
}

func (m Model) updateSketch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.sketch
	key := msg.String()
	m.clearMessages()
	switch key {
	case "esc", "q":
		m.leaveSketch()
	case "?":
		m.help = true
		m.helpScroll = 0
	case "w":
		s.canvas.SetMode(ink.ModeWrite)
	case "e":
		s.canvas.SetMode(ink.ModeErase)
	case "u":
		if !s.canvas.Undo() {
			m.succeed("Nothing to undo")
		}
	case "U", "ctrl+r":
		if !s.canvas.Redo() {
			m.succeed("Nothing to redo")
		}
	case "+", "=":
		m.adjustPen(1)
	case "-", "_":
		m.adjustPen(-1)
	case "]":
		m.adjustEraser(4)
	case "[":
		m.adjustEraser(-4)
	case "c":
		if s.canvas.Len() > 0 {
			m.confirm(ConfirmClearCanvas, s.note.ID, 0)
		}
	case "a":
		m.addPreset()
	case "D":
		if s.preset >= 0 {
			m.confirm(ConfirmRemovePreset, s.note.ID, s.preset)
		}
	case "x":
		m.startInput(InputExportPNG, s.note.ID, s.note.Name+".png")
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(s.presets) {
			p := s.presets[n-1]
			s.canvas.SetPen(p.Color, p.Width)
			s.canvas.SetMode(ink.ModeWrite)
			s.preset = n - 1
		}
	}
	return m, nil
}

func (m *Model) adjustPen(delta float64) {
	s := m.sketch
	color, width := s.canvas.Pen()
	width = min(max(width+delta, minPenWidth), maxPenWidth)
	s.canvas.SetPen(color, width)
	s.preset = -1
}

func (m *Model) adjustEraser(delta float64) {
	s := m.sketch
	r := s.canvas.Options().EraserRadius
	s.canvas.SetEraserRadius(max(r+delta, 2))
}

func (m *Model) addPreset() {
	if m.opts.Prefs == nil {
		return
	}
	s := m.sketch
	color, width := s.canvas.Pen()
	list, err := m.opts.Prefs.AddPreset(settings.Preset{Color: color, Width: width})
	if err != nil {
		m.fail(err)
		return
	}
	s.presets = list
	s.preset = len(list) - 1
	m.succeed("Saved preset %d", len(list))
}

func (m *Model) removePreset(index int) {
	if m.opts.Prefs == nil || m.sketch == nil {
		return
	}
	list, err := m.opts.Prefs.RemovePreset(index)
	if err != nil {
		m.fail(err)
		return
	}
	m.sketch.presets = list
	m.sketch.preset = -1
	m.succeed("Removed preset %d", index+1)
}

func (m Model) sketchView() string {
	s := m.sketch
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.note.Name))
	for i, p := range s.presets {
		label := fmt.Sprintf("%d:%g", i+1, p.Width)
		style := swatchStyle.Foreground(hexColor(p.Color))
		if i == s.preset {
			style = style.Reverse(true)
		}
		b.WriteString(" " + style.Render(label))
	}
	b.WriteByte('\n')
	b.WriteString(s.pad.render(s.pad.raster(s.canvas.Strokes(), s.canvas.Live())))
	return b.String()
}

func (m Model) sketchStatus() string {
	s := m.sketch
	if s == nil {
		return ""
	}
	color, width := s.canvas.Pen()
	pen := lipgloss.NewStyle().Foreground(hexColor(color)).Render("●")
	status := fmt.Sprintf("%s | pen %s %g | strokes %d", s.canvas.Mode(), pen, width, s.canvas.Len())
	if s.canvas.Mode() == ink.ModeErase {
		status += fmt.Sprintf(" | eraser %g", s.canvas.Options().EraserRadius)
	}
	if s.canvas.CanUndo() {
		status += " | u=undo"
	}
	if s.canvas.CanRedo() {
		status += " | U=redo"
	}
	return status
}
