package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"scribe/summaries"
)

const fetchTimeout = 30 * time.Second

// syncer is implemented by sources that keep a local copy.
type syncer interface {
	Sync(ctx context.Context) error
}

// navigation applied to the directory stack once a listing succeeds
const (
	navStay = iota
	navInto
	navBack
)

type listedMsg struct {
	seq     int
	dir     string
	nav     int
	entries []summaries.Entry
	err     error
}

type fetchedMsg struct {
	seq   int
	entry summaries.Entry
	md    string
	err   error
}

type syncedMsg struct {
	err error
}

type summaryView struct {
	dir     string
	stack   []string
	entries []summaries.Entry
	cursor  int
	loading bool
	err     error
	seq     int

	// retry repeats the last failed request.
	retry func(m Model) (tea.Model, tea.Cmd)

	doc      summaries.Entry
	markdown string
	lines    []string
	scroll   int
}

func newSummaryView() *summaryView {
	return &summaryView{}
}

func (v *summaryView) status() string {
	switch {
	case v.loading:
		return "loading..."
	case v.err != nil:
		return "r=retry, Esc=back"
	case v.doc.Path != "":
		return fmt.Sprintf("%s | line %d/%d | y=copy markdown", v.doc.Path, v.scroll+1, max(len(v.lines), 1))
	default:
		return fmt.Sprintf("/%s | %d entries | S=sync", v.dir, len(v.entries))
	}
}

func (v *summaryView) render(width int) {
	if v.markdown == "" {
		v.lines = nil
		return
	}
	out, err := summaries.RenderTerminal(v.markdown, max(width-2, 20), "")
	if err != nil {
		out = v.markdown
	}
	v.lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
	v.scroll = clamp(v.scroll, 0, max(len(v.lines)-1, 0))
}

func (m Model) listCmd(dir string, nav int) tea.Cmd {
	src := m.opts.Source
	seq := m.sum.seq
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		entries, err := src.List(ctx, dir)
		return listedMsg{seq: seq, dir: dir, nav: nav, entries: entries, err: err}
	}
}

func (m Model) fetchCmd(entry summaries.Entry) tea.Cmd {
	src := m.opts.Source
	seq := m.sum.seq
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		md, err := src.Fetch(ctx, entry.Path)
		return fetchedMsg{seq: seq, entry: entry, md: md, err: err}
	}
}

func (m Model) syncCmd(s syncer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*fetchTimeout)
		defer cancel()
		return syncedMsg{err: s.Sync(ctx)}
	}
}

func (m Model) openSummaries() (tea.Model, tea.Cmd) {
	if m.opts.Source == nil {
		m.fail(summaries.ErrNotConfigured)
		return m, nil
	}
	m.mode = ModeSummaries
	if m.sum.entries != nil || m.sum.loading {
		return m, nil
	}
	return m.loadDir(m.sum.dir, navStay)
}

func (m Model) loadDir(dir string, nav int) (tea.Model, tea.Cmd) {
	m.sum.seq++
	m.sum.loading = true
	m.sum.err = nil
	m.sum.retry = func(m Model) (tea.Model, tea.Cmd) { return m.loadDir(dir, nav) }
	return m, m.listCmd(dir, nav)
}

func (m Model) loadDoc(e summaries.Entry) (tea.Model, tea.Cmd) {
	m.sum.seq++
	m.sum.loading = true
	m.sum.err = nil
	m.sum.retry = func(m Model) (tea.Model, tea.Cmd) { return m.loadDoc(e) }
	return m, m.fetchCmd(e)
}

func (m Model) updateSummaries(msg tea.Msg) (tea.Model, tea.Cmd) {
	v := m.sum
	switch msg := msg.(type) {
	case listedMsg:
		if msg.seq != v.seq {
			return m, nil
		}
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			m.fail(msg.err)
			return m, nil
		}
		prev := v.dir
		switch msg.nav {
		case navInto:
			v.stack = append(v.stack, prev)
		case navBack:
			if len(v.stack) > 0 {
				v.stack = v.stack[:len(v.stack)-1]
			}
		}
		v.dir = msg.dir
		v.entries = msg.entries
		v.cursor = 0
		if msg.nav == navBack {
			for i, e := range v.entries {
				if e.Path == prev {
					v.cursor = i
				}
			}
		}
		v.retry = nil
		m.clearMessages()
	case fetchedMsg:
		if msg.seq != v.seq {
			return m, nil
		}
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			m.fail(msg.err)
			return m, nil
		}
		v.retry = nil
		v.doc = msg.entry
		v.markdown = msg.md
		v.scroll = 0
		v.render(m.width)
		m.mode = ModeReader
		m.clearMessages()
	case syncedMsg:
		v.loading = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.succeed("Synced")
		return m.loadDir(v.dir, navStay)
	}
	return m, nil
}

func (m Model) updateSummaryList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.sum
	key := msg.String()
	if isNavKey(key) {
		v.cursor = moveCursor(key, v.cursor, len(v.entries), m.listHeight())
		return m, nil
	}
	switch key {
	case "q":
		m.mode = ModeBrowse
		m.clearMessages()
	case "esc", "h", "left", "backspace":
		if len(v.stack) == 0 {
			m.mode = ModeBrowse
			m.clearMessages()
			return m, nil
		}
		return m.loadDir(v.stack[len(v.stack)-1], navBack)
	case "r":
		if v.retry != nil {
			return v.retry(m)
		}
		return m.loadDir(v.dir, navStay)
	case "S":
		if s, ok := m.opts.Source.(syncer); ok {
			v.loading = true
			return m, m.syncCmd(s)
		}
		m.succeed("Source reads live from GitHub")
	case "?":
		m.help = true
		m.helpScroll = 0
	case "enter", "l", "right":
		if v.loading || v.cursor >= len(v.entries) {
			return m, nil
		}
		e := v.entries[v.cursor]
		if e.Dir {
			return m.loadDir(e.Path, navInto)
		}
		return m.loadDoc(e)
	}
	return m, nil
}

func (m Model) updateReader(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.sum
	key := msg.String()
	if isNavKey(key) {
		v.scroll = moveCursor(key, v.scroll, len(v.lines), m.height-2)
		return m, nil
	}
	switch key {
	case "esc", "q", "h", "left", "backspace":
		m.mode = ModeSummaries
		v.doc = summaries.Entry{}
		v.markdown = ""
		v.lines = nil
		m.clearMessages()
	case "y":
		if err := writeClipboardText(v.markdown); err != nil {
			m.fail(err)
		} else {
			m.succeed("Copied markdown")
		}
	case "r":
		return m.loadDoc(v.doc)
	case "?":
		m.help = true
		m.helpScroll = 0
	}
	return m, nil
}

func (m Model) summaryListView() string {
	v := m.sum
	var b strings.Builder
	b.WriteString(titleStyle.Render("Summaries") + "  " + crumbStyle.Render("/"+v.dir) + "\n\n")
	switch {
	case v.loading && len(v.entries) == 0:
		b.WriteString("  Loading...")
		return b.String()
	case v.err != nil && len(v.entries) == 0:
		b.WriteString(errorStyle.Render("  "+v.err.Error()) + "\n\n  Press r to retry.")
		return b.String()
	case len(v.entries) == 0:
		b.WriteString(crumbStyle.Render("  nothing here"))
		return b.String()
	}
	height := m.listHeight()
	start := window(v.cursor, len(v.entries), height)
	for i := start; i < len(v.entries) && i < start+height; i++ {
		e := v.entries[i]
		line := "  " + summaries.Title(e.Name)
		if e.Dir {
			line = "▸ " + e.Name + "/"
		}
		switch {
		case i == v.cursor:
			line = selectedStyle.Render(line)
		case e.Dir:
			line = folderStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) readerView() string {
	v := m.sum
	height := max(m.height-1, 1)
	end := min(v.scroll+height, len(v.lines))
	if v.scroll >= end {
		return ""
	}
	return strings.Join(v.lines[v.scroll:end], "\n")
}
