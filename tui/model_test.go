package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribe/ink"
	"scribe/notestore"
	"scribe/notetree"
	"scribe/settings"
	"scribe/summaries"
)

type fixture struct {
	tree   *notetree.Repository
	store  *notestore.Store
	writer *notestore.Writer
	prefs  *settings.Store
}

func newFixture(t *testing.T, src summaries.Source) (fixture, Model) {
	t.Helper()
	tree, err := notetree.Open(t.TempDir(), notetree.Options{})
	require.NoError(t, err)
	store := notestore.New(tree, zerolog.Nop())
	writer := notestore.NewWriter(store)
	t.Cleanup(writer.Close)
	prefs := settings.NewStore(t.TempDir())

	opts := ink.DefaultOptions()
	opts.Width, opts.Height = 400, 360
	m := New(Options{
		Tree:      tree,
		Store:     store,
		Writer:    writer,
		Prefs:     prefs,
		Source:    src,
		Ink:       opts,
		ExportDir: t.TempDir(),
		Log:       zerolog.Nop(),
	})
	t.Cleanup(m.Close)
	m = send(m, tea.WindowSizeMsg{Width: 40, Height: 20})
	return fixture{tree: tree, store: store, writer: writer, prefs: prefs}, m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	var tm tea.Model = m
	for _, msg := range msgs {
		tm, _ = tm.Update(msg)
	}
	return tm.(Model)
}

func keys(m Model, ks ...string) Model {
	for _, k := range ks {
		m = send(m, keyMsg(k))
	}
	return m
}

func typeText(m Model, text string) Model {
	return send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func names(infos []notetree.Info) []string {
	out := make([]string, len(infos))
	for i, in := range infos {
		out[i] = in.Name
	}
	return out
}

func TestCreateOpenAndRename(t *testing.T) {
	fx, m := newFixture(t, nil)

	m = keys(m, "F")
	assert.Equal(t, ModeInput, m.mode)
	m = typeText(m, "Math")
	m = keys(m, "enter")
	assert.Equal(t, ModeBrowse, m.mode)
	assert.Equal(t, []string{"Math"}, names(m.entries))

	m = keys(m, "enter")
	math, err := fx.tree.Resolve("Math")
	require.NoError(t, err)
	assert.Equal(t, math.ID, m.folderID)
	assert.Contains(t, m.View(), "Notes / Math")

	m = keys(m, "n")
	m = typeText(m, "Algebra")
	m = keys(m, "enter")
	assert.Equal(t, []string{"Algebra"}, names(m.entries))

	m = keys(m, "r", "backspace", "backspace", "backspace", "backspace")
	m = typeText(m, "ebra 2")
	m = keys(m, "enter")
	children, err := fx.tree.Children(math.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Algebra 2"}, names(children))
	assert.Contains(t, m.successMessage, "Renamed")

	m = keys(m, "h")
	assert.Equal(t, notetree.RootID, m.folderID)
	sel, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "Math", sel.Name)
}

func TestInputEditing(t *testing.T) {
	_, m := newFixture(t, nil)
	m = keys(m, "n")
	m = typeText(m, "bc")
	m = keys(m, "left", "left")
	m = typeText(m, "a")
	m = send(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, "a bc", string(m.inputText))
	m = keys(m, "esc")
	assert.Equal(t, ModeBrowse, m.mode)
	assert.Empty(t, m.entries)
}

func TestMoveRejectsCycle(t *testing.T) {
	fx, m := newFixture(t, nil)
	a, err := fx.tree.CreateFolder(notetree.RootID, "A")
	require.NoError(t, err)
	b, err := fx.tree.CreateFolder(a.ID, "B")
	require.NoError(t, err)
	m = send(m, treeEventMsg{})

	m = keys(m, "m")
	require.Equal(t, ModeMove, m.mode)
	for i, target := range m.targets {
		if target.info.ID == b.ID {
			m.targetCursor = i
		}
	}
	m = keys(m, "enter")
	assert.Equal(t, ModeMove, m.mode)
	assert.Contains(t, m.errorMessage, "itself")

	m = keys(m, "esc")
	assert.Equal(t, ModeBrowse, m.mode)
	info, err := fx.tree.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, notetree.RootID, info.ParentID)
}

func TestMoveNote(t *testing.T) {
	fx, m := newFixture(t, nil)
	dest, err := fx.tree.CreateFolder(notetree.RootID, "Archive")
	require.NoError(t, err)
	note, err := fx.tree.CreateNote(notetree.RootID, "Todo")
	require.NoError(t, err)
	m = send(m, treeEventMsg{})
	m.selectID(note.ID)

	m = keys(m, "m")
	for i, target := range m.targets {
		if target.info.ID == dest.ID {
			m.targetCursor = i
		}
	}
	m = keys(m, "enter")
	assert.Equal(t, ModeBrowse, m.mode)
	assert.Equal(t, dest.ID, m.folderID)
	moved, err := fx.tree.Get(note.ID)
	require.NoError(t, err)
	assert.Equal(t, dest.ID, moved.ParentID)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	fx, m := newFixture(t, nil)
	_, err := fx.tree.CreateNote(notetree.RootID, "Scratch")
	require.NoError(t, err)
	m = send(m, treeEventMsg{})

	m = keys(m, "d")
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Contains(t, m.statusLine(), "Delete note Scratch?")
	m = keys(m, "n")
	assert.Equal(t, 1, fx.tree.Len())

	m = keys(m, "d", "y")
	assert.Equal(t, ModeBrowse, m.mode)
	assert.Equal(t, 0, fx.tree.Len())
	assert.Empty(t, m.entries)
}

func TestTreeEventsRefresh(t *testing.T) {
	fx, m := newFixture(t, nil)
	_, err := fx.tree.CreateNote(notetree.RootID, "Outside")
	require.NoError(t, err)

	ev := <-m.events
	m = send(m, treeEventMsg(ev))
	assert.Equal(t, []string{"Outside"}, names(m.entries))
}

func mouse(x, y int, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func TestSketchDrawUndoAndSave(t *testing.T) {
	fx, m := newFixture(t, nil)
	note, err := fx.tree.CreateNote(notetree.RootID, "Diagram")
	require.NoError(t, err)
	m = send(m, treeEventMsg{})

	m = keys(m, "enter")
	require.Equal(t, ModeSketch, m.mode)
	canvas := m.sketch.canvas

	m = send(m,
		mouse(5, 3, tea.MouseActionPress),
		mouse(10, 3, tea.MouseActionMotion),
		mouse(15, 3, tea.MouseActionRelease),
	)
	require.Equal(t, 1, canvas.Len())
	assert.Equal(t, []ink.Point{{X: 55, Y: 50}, {X: 105, Y: 50}, {X: 155, Y: 50}}, canvas.Strokes()[0].Points)
	assert.Contains(t, m.View(), "█")

	m = send(m, mouse(20, 10, tea.MouseActionPress), mouse(20, 10, tea.MouseActionRelease))
	assert.Equal(t, 2, canvas.Len())
	m = keys(m, "u")
	assert.Equal(t, 1, canvas.Len())
	m = keys(m, "U")
	assert.Equal(t, 2, canvas.Len())

	m = keys(m, "+", "+")
	_, width := canvas.Pen()
	assert.Equal(t, 8.0, width)

	m = keys(m, "esc")
	assert.Equal(t, ModeBrowse, m.mode)
	assert.Nil(t, m.sketch)

	saved, err := fx.store.LoadStrokes(note.ID)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
	prefs, err := fx.prefs.Load()
	require.NoError(t, err)
	assert.Equal(t, 8.0, prefs.PenWidth)
}

func TestSketchLeavingOutsidePageEndsStroke(t *testing.T) {
	fx, m := newFixture(t, nil)
	_, err := fx.tree.CreateNote(notetree.RootID, "Edge")
	require.NoError(t, err)
	m = send(m, treeEventMsg{})
	m = keys(m, "enter")
	canvas := m.sketch.canvas

	m = send(m,
		mouse(5, 5, tea.MouseActionPress),
		mouse(8, 5, tea.MouseActionMotion),
		mouse(8, 0, tea.MouseActionMotion),
	)
	assert.Nil(t, canvas.Live())
	assert.Equal(t, 1, canvas.Len())
	m = send(m, mouse(8, 0, tea.MouseActionRelease))
	assert.Equal(t, 1, canvas.Len())
}

func TestSketchPresetsAndEraser(t *testing.T) {
	fx, m := newFixture(t, nil)
	_, err := fx.tree.CreateNote(notetree.RootID, "Colors")
	require.NoError(t, err)
	m = send(m, treeEventMsg{})
	m = keys(m, "enter")
	canvas := m.sketch.canvas

	m = keys(m, "2")
	color, width := canvas.Pen()
	assert.Equal(t, ink.Red, color)
	assert.Equal(t, 4.0, width)

	m = send(m, mouse(5, 5, tea.MouseActionPress), mouse(12, 5, tea.MouseActionMotion), mouse(12, 5, tea.MouseActionRelease))
	require.Equal(t, 1, canvas.Len())

	m = keys(m, "e")
	assert.Equal(t, ink.ModeErase, canvas.Mode())
	m = send(m, mouse(6, 5, tea.MouseActionPress), mouse(6, 5, tea.MouseActionRelease))
	assert.Equal(t, 0, canvas.Len())

	m = keys(m, "D")
	require.Equal(t, ModeConfirm, m.mode)
	m = keys(m, "y")
	assert.Equal(t, ModeSketch, m.mode)
	assert.Len(t, m.sketch.presets, 2)

	m = keys(m, "a")
	assert.Len(t, m.sketch.presets, 3)
	list, err := fx.prefs.Load()
	require.NoError(t, err)
	assert.Len(t, list.PresetList(), 3)
}

func TestExportFromBrowser(t *testing.T) {
	fx, m := newFixture(t, nil)
	note, err := fx.tree.CreateNote(notetree.RootID, "Plot")
	require.NoError(t, err)
	require.NoError(t, fx.store.SaveStrokes(note.ID, []ink.Stroke{
		{Points: []ink.Point{{X: 0, Y: 0}, {X: 30, Y: 20}}, Color: ink.Blue, Width: 3},
	}))
	m = send(m, treeEventMsg{})

	m = keys(m, "x", "enter")
	assert.Empty(t, m.errorMessage)
	assert.Contains(t, m.successMessage, "Plot.png")

	m = keys(m, "x", "enter")
	assert.Equal(t, ModeConfirm, m.mode)
	m = keys(m, "y")
	assert.Equal(t, ModeBrowse, m.mode)
	assert.Contains(t, m.successMessage, "Exported")
}

func TestExportEmptyNoteFails(t *testing.T) {
	fx, m := newFixture(t, nil)
	_, err := fx.tree.CreateNote(notetree.RootID, "Blank")
	require.NoError(t, err)
	m = send(m, treeEventMsg{})
	m = keys(m, "x", "enter")
	assert.Contains(t, m.errorMessage, "no strokes")
}

type fakeSource struct {
	dirs map[string][]summaries.Entry
	docs map[string]string
	fail bool
}

func (f *fakeSource) List(_ context.Context, dir string) ([]summaries.Entry, error) {
	if f.fail {
		return nil, errors.New("network down")
	}
	return f.dirs[dir], nil
}

func (f *fakeSource) Fetch(_ context.Context, path string) (string, error) {
	if f.fail {
		return "", errors.New("network down")
	}
	return f.docs[path], nil
}

// run executes cmd and feeds its message back into the model.
func run(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	tm, _ := m.Update(cmd())
	return tm.(Model)
}

func press(m Model, k string) (Model, tea.Cmd) {
	tm, cmd := m.Update(keyMsg(k))
	return tm.(Model), cmd
}

func TestSummariesBrowseAndRetry(t *testing.T) {
	src := &fakeSource{
		dirs: map[string][]summaries.Entry{
			"":        {{Name: "Biology", Path: "Biology", Dir: true}},
			"Biology": {{Name: "cells.md", Path: "Biology/cells.md"}},
		},
		docs: map[string]string{"Biology/cells.md": "# Cells\n\nThe unit of life."},
		fail: true,
	}
	_, m := newFixture(t, src)

	m, cmd := press(m, "s")
	assert.Equal(t, ModeSummaries, m.mode)
	m = run(m, cmd)
	assert.Contains(t, m.errorMessage, "network down")
	assert.Contains(t, m.View(), "Press r to retry")

	src.fail = false
	m, cmd = press(m, "r")
	m = run(m, cmd)
	assert.Empty(t, m.errorMessage)
	require.Len(t, m.sum.entries, 1)

	m, cmd = press(m, "enter")
	m = run(m, cmd)
	assert.Equal(t, "Biology", m.sum.dir)
	assert.Contains(t, m.View(), "cells")

	m, cmd = press(m, "enter")
	m = run(m, cmd)
	require.Equal(t, ModeReader, m.mode)
	assert.True(t, strings.Contains(m.View(), "Cells"))

	m = keys(m, "esc")
	assert.Equal(t, ModeSummaries, m.mode)
	m, cmd = press(m, "h")
	m = run(m, cmd)
	assert.Equal(t, "", m.sum.dir)
	assert.Empty(t, m.sum.stack)

	m, _ = press(m, "q")
	assert.Equal(t, ModeBrowse, m.mode)
}

func TestSummariesNotConfigured(t *testing.T) {
	_, m := newFixture(t, nil)
	m = keys(m, "s")
	assert.Equal(t, ModeBrowse, m.mode)
	assert.Contains(t, m.errorMessage, "not configured")
}

func TestHelpToggle(t *testing.T) {
	_, m := newFixture(t, nil)
	m = keys(m, "?")
	assert.True(t, m.help)
	assert.Contains(t, m.View(), "scribe help")
	m = keys(m, "esc")
	assert.False(t, m.help)
}
