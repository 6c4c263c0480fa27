package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var helpLines = []string{
	"scribe help",
	"===========",
	"",
	"Browsing:",
	"---------",
	"  j/k, arrows       Move the selection (J/K jump 5, g/G first/last)",
	"  Enter, l          Open folder, or open note on the sketch pad",
	"  h, Backspace      Go to the parent folder",
	"  n                 New note in this folder",
	"  F                 New folder in this folder",
	"  r                 Rename selection",
	"  m                 Move selection to another folder",
	"  d                 Delete selection (folders with contents)",
	"  e                 Edit the note's text in $EDITOR",
	"  x                 Export the note's drawing as PNG",
	"  y                 Copy the selection's directory path",
	"  R                 Reload the tree from disk",
	"  s                 Browse summaries",
	"",
	"Sketch pad:",
	"-----------",
	"  Left mouse drag   Draw (or erase in eraser mode)",
	"  Right click       Erase under the pointer",
	"  w / e             Pen / eraser mode",
	"  u / U, Ctrl+R     Undo / redo",
	"  + / -             Pen width",
	"  [ / ]             Eraser size",
	"  1-9               Pick a saved pen preset",
	"  a                 Save the current pen as a preset",
	"  D                 Remove the selected preset",
	"  c                 Clear the page",
	"  x                 Export PNG",
	"  Esc, q            Back to the browser",
	"",
	"Summaries:",
	"----------",
	"  Enter             Open folder or summary",
	"  h, Esc            Back",
	"  r                 Retry after an error",
	"  S                 Sync the local mirror",
	"  y                 Copy the open summary's markdown",
	"",
	"Text prompts:",
	"-------------",
	"  Ctrl+V            Paste from the clipboard",
	"  Enter / Esc       Confirm / cancel",
	"",
	"Press ? or Esc to close help. Ctrl+C quits from anywhere.",
}

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		m.helpScroll = clamp(m.helpScroll+1, 0, max(len(helpLines)-m.height+1, 0))
	case "k", "up":
		m.helpScroll = clamp(m.helpScroll-1, 0, len(helpLines))
	}
	return m, nil
}

func (m Model) helpView() string {
	height := max(m.height, 1)
	start := clamp(m.helpScroll, 0, max(len(helpLines)-1, 0))
	end := min(start+height, len(helpLines))
	lines := make([]string, 0, end-start)
	for _, l := range helpLines[start:end] {
		if strings.HasSuffix(l, ":") || strings.HasPrefix(l, "scribe") {
			l = titleStyle.Render(l)
		}
		lines = append(lines, l)
	}
	return strings.Join(lines, "\n")
}
