package tui

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"scribe/notetree"
)

type moveTarget struct {
	info  notetree.Info
	depth int
}

// refresh re-reads the open folder. A folder that disappeared sends the
// browser back to the root.
func (m *Model) refresh() {
	children, err := m.opts.Tree.Children(m.folderID)
	if err != nil {
		m.folderID = notetree.RootID
		if children, err = m.opts.Tree.Children(m.folderID); err != nil {
			m.fail(err)
			return
		}
	}
	m.entries = children
	m.cursor = clamp(m.cursor, 0, len(children)-1)
}

func (m *Model) selected() (notetree.Info, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return notetree.Info{}, false
	}
	return m.entries[m.cursor], true
}

func (m *Model) selectID(id string) {
	for i, e := range m.entries {
		if e.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *Model) listHeight() int {
	return max(m.height-listTop-1, 1)
}

func (m *Model) open(folderID string) {
	m.folderID = folderID
	m.cursor = 0
	m.refresh()
}

func (m *Model) goUp() {
	if m.folderID == notetree.RootID {
		return
	}
	cur, err := m.opts.Tree.Get(m.folderID)
	if err != nil {
		m.open(notetree.RootID)
		return
	}
	m.open(cur.ParentID)
	m.selectID(cur.ID)
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if isNavKey(key) {
		m.cursor = moveCursor(key, m.cursor, len(m.entries), m.listHeight())
		return m, nil
	}
	m.clearMessages()
	sel, ok := m.selected()

	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.help = true
		m.helpScroll = 0
	case "enter", "l", "right":
		if !ok {
			break
		}
		if sel.IsFolder() {
			m.open(sel.ID)
		} else if err := m.openSketch(sel); err != nil {
			m.fail(err)
		}
	case "h", "left", "backspace":
		m.goUp()
	case "F":
		m.startInput(InputNewFolder, "", "")
	case "n":
		m.startInput(InputNewNote, "", "")
	case "r":
		if ok {
			m.startInput(InputRename, sel.ID, sel.Name)
		}
	case "m":
		if ok {
			m.startMove(sel)
		}
	case "d":
		if ok {
			m.confirm(ConfirmDeleteNode, sel.ID, 0)
		}
	case "e":
		if ok && !sel.IsFolder() {
			return m, m.editNote(sel)
		}
	case "x":
		if ok && !sel.IsFolder() {
			m.startInput(InputExportPNG, sel.ID, sel.Name+".png")
		}
	case "y":
		if ok {
			m.copyPath(sel)
		}
	case "R":
		if err := m.opts.Tree.Reload(); err != nil {
			m.fail(err)
		} else {
			m.refresh()
			m.succeed("Reloaded %d nodes", m.opts.Tree.Len())
		}
	case "s":
		return m.openSummaries()
	}
	return m, nil
}

func (m *Model) copyPath(info notetree.Info) {
	path, err := m.opts.Tree.Path(info.ID)
	if err != nil {
		m.fail(err)
		return
	}
	if err := writeClipboardText(path); err != nil {
		m.fail(err)
		return
	}
	m.succeed("Copied %s", path)
}

// editNote hands the note's markdown body to the external editor,
// creating an empty file first if the note has none yet.
func (m *Model) editNote(note notetree.Info) tea.Cmd {
	path, err := m.opts.Store.ContentPath(note.ID)
	if err != nil {
		m.fail(err)
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := m.opts.Store.SaveContent(note.ID, ""); err != nil {
			m.fail(err)
			return nil
		}
	}
	args := strings.Fields(m.opts.Editor)
	if len(args) == 0 {
		args = []string{"vi"}
	}
	cmd := exec.Command(args[0], append(args[1:], path)...)
	id := note.ID
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorClosedMsg{noteID: id, err: err}
	})
}

func (m Model) breadcrumb() string {
	parts := []string{"Notes"}
	if m.folderID != notetree.RootID {
		ancestors, _ := m.opts.Tree.Ancestors(m.folderID)
		for _, a := range ancestors {
			if a.ID != notetree.RootID {
				parts = append(parts, a.Name)
			}
		}
		if cur, err := m.opts.Tree.Get(m.folderID); err == nil {
			parts = append(parts, cur.Name)
		}
	}
	return strings.Join(parts, " / ")
}

func (m Model) browseView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("scribe") + "  " + crumbStyle.Render(m.breadcrumb()))
	b.WriteString("\n\n")
	if len(m.entries) == 0 {
		b.WriteString(crumbStyle.Render("  empty: n creates a note, F a folder"))
		return b.String()
	}
	height := m.listHeight()
	start := window(m.cursor, len(m.entries), height)
	for i := start; i < len(m.entries) && i < start+height; i++ {
		e := m.entries[i]
		line := "  " + e.Name
		if e.IsFolder() {
			line = "▸ " + e.Name + "/"
		}
		switch {
		case i == m.cursor:
			line = selectedStyle.Render(line)
		case e.IsFolder():
			line = folderStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m *Model) startMove(node notetree.Info) {
	m.moveID = node.ID
	m.targets = []moveTarget{{info: m.opts.Tree.Root()}}
	m.opts.Tree.Walk(func(info notetree.Info, depth int) bool {
		if !info.IsFolder() {
			return false
		}
		m.targets = append(m.targets, moveTarget{info: info, depth: depth + 1})
		return true
	})
	m.targetCursor = 0
	for i, t := range m.targets {
		if t.info.ID == node.ParentID {
			m.targetCursor = i
		}
	}
	m.mode = ModeMove
}

func (m Model) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if isNavKey(key) {
		m.targetCursor = moveCursor(key, m.targetCursor, len(m.targets), m.listHeight())
		return m, nil
	}
	switch {
	case msg.Type == tea.KeyEscape || key == "q":
		m.mode = ModeBrowse
		m.clearMessages()
	case msg.Type == tea.KeyEnter:
		target := m.targets[m.targetCursor].info
		moved, err := m.opts.Tree.Move(m.moveID, target.ID)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.mode = ModeBrowse
		m.open(target.ID)
		m.selectID(moved.ID)
		m.succeed("Moved %s", moved.Name)
	}
	return m, nil
}

func (m Model) moveView() string {
	var b strings.Builder
	name := ""
	if info, err := m.opts.Tree.Get(m.moveID); err == nil {
		name = info.Name
	}
	b.WriteString(titleStyle.Render("Move "+name+" to") + "\n\n")
	height := m.listHeight()
	start := window(m.targetCursor, len(m.targets), height)
	for i := start; i < len(m.targets) && i < start+height; i++ {
		t := m.targets[i]
		label := t.info.Name
		if t.info.ID == notetree.RootID {
			label = "Notes"
		}
		line := strings.Repeat("  ", t.depth) + "▸ " + label
		if i == m.targetCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m *Model) confirm(action ConfirmAction, target string, index int) {
	m.confirmAction = action
	m.confirmTarget = target
	m.confirmIndex = index
	m.returnMode = m.mode
	m.mode = ModeConfirm
}

func (m Model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmDeleteNode:
		info, err := m.opts.Tree.Get(m.confirmTarget)
		if err != nil {
			return "Delete?"
		}
		if info.IsFolder() {
			return "Delete folder " + info.Name + " and everything in it?"
		}
		return "Delete note " + info.Name + "?"
	case ConfirmClearCanvas:
		return "Clear the whole page?"
	case ConfirmRemovePreset:
		return "Remove this pen preset?"
	case ConfirmOverwriteFile:
		return "File " + m.pendingExport + " already exists. Overwrite?"
	}
	return "Are you sure?"
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = m.returnMode
		m.clearMessages()
		switch m.confirmAction {
		case ConfirmDeleteNode:
			info, _ := m.opts.Tree.Get(m.confirmTarget)
			if err := m.opts.Tree.Delete(m.confirmTarget); err != nil {
				m.fail(err)
			} else {
				m.refresh()
				m.succeed("Deleted %s", info.Name)
			}
		case ConfirmClearCanvas:
			if m.sketch != nil {
				m.sketch.canvas.Clear()
				m.succeed("Cleared")
			}
		case ConfirmRemovePreset:
			m.removePreset(m.confirmIndex)
		case ConfirmOverwriteFile:
			m.exportPNG(m.confirmTarget, m.pendingExport)
		}
	case "n", "N", "esc":
		m.mode = m.returnMode
		m.clearMessages()
	}
	return m, nil
}
