// Package tui is the terminal front-end: a folder/note browser, a sketch
// pad drawn with the mouse, and a reader for the summaries repository.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"scribe/ink"
	"scribe/notestore"
	"scribe/notetree"
	"scribe/settings"
	"scribe/summaries"
)

type Options struct {
	Tree   *notetree.Repository
	Store  *notestore.Store
	Writer *notestore.Writer
	Prefs  *settings.Store
	// Source is optional; without it the summaries screen reports the
	// repository as not configured.
	Source    summaries.Source
	Ink       ink.Options
	Editor    string
	ExportDir string
	Log       zerolog.Logger
}

type treeEventMsg notetree.Event

type editorClosedMsg struct {
	noteID string
	err    error
}

type Model struct {
	opts       Options
	width      int
	height     int
	mode       Mode
	help       bool
	helpScroll int

	folderID string
	entries  []notetree.Info
	cursor   int

	inputOp        InputOperation
	inputText      []rune
	inputCursorPos int
	inputTarget    string

	moveID       string
	targets      []moveTarget
	targetCursor int

	confirmAction ConfirmAction
	confirmTarget string
	confirmIndex  int
	pendingExport string

	// returnMode is the screen shown under an input or confirm prompt and
	// restored when it closes.
	returnMode Mode

	sketch *sketch
	sum    *summaryView

	events      chan notetree.Event
	unsubscribe func()

	errorMessage   string
	successMessage string
}

func New(opts Options) Model {
	events := make(chan notetree.Event, 64)
	unsubscribe := opts.Tree.Events().Subscribe(func(ev notetree.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	m := Model{
		opts:        opts,
		mode:        ModeBrowse,
		folderID:    notetree.RootID,
		events:      events,
		unsubscribe: unsubscribe,
		sum:         newSummaryView(),
	}
	m.refresh()
	return m
}

// Close detaches the model from the tree's events.
func (m Model) Close() {
	m.unsubscribe()
}

func waitForTreeEvent(ch <-chan notetree.Event) tea.Cmd {
	return func() tea.Msg {
		return treeEventMsg(<-ch)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForTreeEvent(m.events)
}

func (m *Model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

func (m *Model) fail(err error) {
	m.successMessage = ""
	m.errorMessage = err.Error()
	m.opts.Log.Debug().Err(err).Str("mode", m.mode.String()).Msg("action failed")
}

func (m *Model) succeed(format string, args ...any) {
	m.errorMessage = ""
	m.successMessage = fmt.Sprintf(format, args...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.sketch != nil {
			m.sketch.pad = newPad(m.width, m.height-padTop-padBottom, m.sketch.canvas.Options())
		}
		if m.mode == ModeReader {
			m.sum.render(m.width)
		}
		return m, nil

	case treeEventMsg:
		m.refresh()
		return m, waitForTreeEvent(m.events)

	case editorClosedMsg:
		if msg.err != nil {
			m.fail(msg.err)
		} else {
			m.succeed("Saved note text")
		}
		return m, nil

	case listedMsg, fetchedMsg, syncedMsg:
		return m.updateSummaries(msg)

	case tea.MouseMsg:
		if m.mode == ModeSketch && !m.help {
			m.handleMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.leaveSketch()
			return m, tea.Quit
		}
		if m.help {
			return m.updateHelp(msg)
		}
		switch m.mode {
		case ModeBrowse:
			return m.updateBrowse(msg)
		case ModeInput:
			return m.updateInput(msg)
		case ModeMove:
			return m.updateMove(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		case ModeSketch:
			return m.updateSketch(msg)
		case ModeSummaries:
			return m.updateSummaryList(msg)
		case ModeReader:
			return m.updateReader(msg)
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.help {
		return m.helpView()
	}

	mode := m.mode
	if mode == ModeInput || mode == ModeConfirm {
		mode = m.returnMode
	}
	var body string
	switch mode {
	case ModeSketch:
		body = m.sketchView()
	case ModeMove:
		body = m.moveView()
	case ModeSummaries:
		body = m.summaryListView()
	case ModeReader:
		body = m.readerView()
	default:
		body = m.browseView()
	}

	lines := strings.Split(body, "\n")
	room := max(m.height-1, 1)
	if len(lines) > room {
		lines = lines[:room]
	}
	for len(lines) < room {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n") + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	var status string
	switch m.mode {
	case ModeInput:
		text := string(m.inputText[:m.inputCursorPos]) + "█" + string(m.inputText[m.inputCursorPos:])
		status = fmt.Sprintf("Mode: %s | %s: %s | Enter=confirm, Esc=cancel, Ctrl+V=paste", m.mode, m.inputOp.prompt(), text)
	case ModeConfirm:
		status = fmt.Sprintf("Mode: %s | %s (y/n)", m.mode, m.confirmMessage())
	default:
		status = fmt.Sprintf("Mode: %s", m.mode)
		if extra := m.modeStatus(); extra != "" {
			status += " | " + extra
		}
	}
	switch {
	case m.errorMessage != "":
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		status += " | " + successStyle.Render(m.successMessage)
	case m.mode != ModeInput && m.mode != ModeConfirm:
		status += " | ? for help | q to quit"
	}
	return statusStyle.Render(status)
}

func (m Model) modeStatus() string {
	switch m.mode {
	case ModeSketch:
		return m.sketchStatus()
	case ModeMove:
		return "Enter=move here, Esc=cancel"
	case ModeSummaries, ModeReader:
		return m.sum.status()
	default:
		return fmt.Sprintf("%d items", len(m.entries))
	}
}
