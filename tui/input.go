package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"scribe/notetree"
)

func (m *Model) startInput(op InputOperation, target, text string) {
	m.inputOp = op
	m.inputTarget = target
	m.inputText = []rune(text)
	m.inputCursorPos = len(m.inputText)
	m.returnMode = m.mode
	m.mode = ModeInput
	m.clearMessages()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEscape:
		m.mode = m.returnMode
		m.inputText = nil
		m.inputCursorPos = 0
		m.clearMessages()
	case msg.Type == tea.KeyEnter:
		m.submitInput()
	case msg.Type == tea.KeyCtrlV:
		text, err := readClipboardText()
		if err != nil {
			m.fail(err)
			break
		}
		m.insert([]rune(pasteName(text)))
	case msg.Type == tea.KeyLeft:
		if m.inputCursorPos > 0 {
			m.inputCursorPos--
		}
	case msg.Type == tea.KeyRight:
		if m.inputCursorPos < len(m.inputText) {
			m.inputCursorPos++
		}
	case msg.Type == tea.KeyHome || msg.Type == tea.KeyCtrlA:
		m.inputCursorPos = 0
	case msg.Type == tea.KeyEnd || msg.Type == tea.KeyCtrlE:
		m.inputCursorPos = len(m.inputText)
	case msg.Type == tea.KeyBackspace:
		if m.inputCursorPos > 0 {
			m.inputText = append(m.inputText[:m.inputCursorPos-1:m.inputCursorPos-1], m.inputText[m.inputCursorPos:]...)
			m.inputCursorPos--
		}
	case msg.Type == tea.KeyDelete:
		if m.inputCursorPos < len(m.inputText) {
			m.inputText = append(m.inputText[:m.inputCursorPos:m.inputCursorPos], m.inputText[m.inputCursorPos+1:]...)
		}
	case msg.Type == tea.KeySpace:
		m.insert([]rune{' '})
	case msg.Type == tea.KeyRunes:
		m.insert(msg.Runes)
	}
	return m, nil
}

func (m *Model) insert(rs []rune) {
	text := make([]rune, 0, len(m.inputText)+len(rs))
	text = append(text, m.inputText[:m.inputCursorPos]...)
	text = append(text, rs...)
	text = append(text, m.inputText[m.inputCursorPos:]...)
	m.inputText = text
	m.inputCursorPos += len(rs)
}

// submitInput runs the pending operation. On failure the prompt stays open
// with the error shown so the user can fix the text and retry.
func (m *Model) submitInput() {
	text := string(m.inputText)
	var (
		info notetree.Info
		err  error
		verb string
	)
	switch m.inputOp {
	case InputNewFolder:
		info, err = m.opts.Tree.CreateFolder(m.folderID, text)
		verb = "Created folder"
	case InputNewNote:
		info, err = m.opts.Tree.CreateNote(m.folderID, text)
		verb = "Created note"
	case InputRename:
		info, err = m.opts.Tree.Rename(m.inputTarget, text)
		verb = "Renamed to"
	case InputExportPNG:
		m.mode = m.returnMode
		m.requestExport(m.inputTarget, text)
		return
	}
	if err != nil {
		m.fail(err)
		return
	}
	m.mode = m.returnMode
	m.refresh()
	m.selectID(info.ID)
	m.succeed("%s %s", verb, info.Name)
}
