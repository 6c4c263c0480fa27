package tui

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/atotto/clipboard"
)

// readClipboardText prefers pbpaste's plain text flavor on macOS, where
// the generic reader can hand back RTF.
func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if out, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(out), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

// pasteName turns clipboard text into a single-line node name.
func pasteName(text string) string {
	text, _, _ = strings.Cut(cleanClipboardText(text), "\n")
	return strings.TrimSpace(strings.ReplaceAll(text, "\t", " "))
}

// cleanClipboardText reduces rich clipboard content to plain text with
// "\n" line endings and no control characters other than tabs.
func cleanClipboardText(text string) string {
	switch {
	case strings.HasPrefix(text, `{\rtf`):
		text = stripRTF(text)
	case looksLikeHTML(text):
		text = htmlText(text)
	}
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)
}

func looksLikeHTML(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if !strings.HasPrefix(t, "<") {
		return false
	}
	for _, tag := range []string{"<html", "<body", "<div", "<span", "<p>"} {
		if strings.Contains(t, tag) {
			return true
		}
	}
	return false
}

// htmlText returns the document's text content without script and style
// bodies. Entities are decoded by the parser.
func htmlText(src string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return src
	}
	doc.Find("head, script, style, noscript, template").Remove()
	return doc.Text()
}

// stripRTF keeps text runs and escaped braces and backslashes. Groups and
// control words are dropped, except \par and \line (newline) and \tab.
func stripRTF(src string) string {
	var b strings.Builder
	rs := []rune(src)
	for i := 0; i < len(rs); i++ {
		switch c := rs[i]; {
		case c == '{' || c == '}' || c == '\n' || c == '\r':
		case c != '\\':
			b.WriteRune(c)
		case i+1 < len(rs) && asciiLetter(rs[i+1]):
			j := i + 1
			for j < len(rs) && asciiLetter(rs[j]) {
				j++
			}
			word := string(rs[i+1 : j])
			for j < len(rs) && (rs[j] == '-' || (rs[j] >= '0' && rs[j] <= '9')) {
				j++
			}
			if j < len(rs) && rs[j] == ' ' {
				j++
			}
			switch word {
			case "par", "line":
				b.WriteByte('\n')
			case "tab":
				b.WriteByte('\t')
			}
			i = j - 1
		case i+1 < len(rs):
			if n := rs[i+1]; n == '\\' || n == '{' || n == '}' {
				b.WriteRune(n)
			}
			i++
		}
	}
	return b.String()
}

func asciiLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
