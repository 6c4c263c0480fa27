package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scribe/ink"
)

func (m *Model) exportPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "note"
	}
	if !strings.EqualFold(filepath.Ext(name), ".png") {
		name += ".png"
	}
	if !filepath.IsAbs(name) && m.opts.ExportDir != "" {
		name = filepath.Join(m.opts.ExportDir, name)
	}
	return name
}

// requestExport asks before overwriting an existing file.
func (m *Model) requestExport(noteID, name string) {
	path := m.exportPath(name)
	if _, err := os.Stat(path); err == nil {
		m.pendingExport = path
		m.confirm(ConfirmOverwriteFile, noteID, 0)
		return
	}
	m.exportPNG(noteID, path)
}

func (m *Model) exportPNG(noteID, path string) {
	info, err := m.opts.Tree.Get(noteID)
	if err != nil {
		m.fail(err)
		return
	}
	var strokes []ink.Stroke
	if m.sketch != nil && m.sketch.note.ID == noteID {
		strokes = m.sketch.canvas.Strokes()
	} else if strokes, err = m.opts.Store.LoadStrokes(noteID); err != nil {
		m.fail(err)
		return
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			m.fail(err)
			return
		}
	}

	r := ink.NewRenderer(m.opts.Ink.DotRadius)
	err = r.ExportPNG(path, strokes, ink.ExportOptions{Caption: info.Name, Padding: 16})
	if errors.Is(err, ink.ErrEmpty) {
		m.fail(fmt.Errorf("%s has no strokes to export", info.Name))
		return
	}
	if err != nil {
		m.fail(err)
		return
	}
	m.opts.Log.Info().Str("note", noteID).Str("path", path).Int("strokes", len(strokes)).Msg("exported png")
	m.succeed("Exported %s", path)
}
