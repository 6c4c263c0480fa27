package tui

// moveCursor applies a list navigation key to cursor and returns the new
// position clamped to [0, n).
func moveCursor(key string, cursor, n, page int) int {
	if n == 0 {
		return 0
	}
	switch key {
	case "k", "up":
		cursor--
	case "j", "down":
		cursor++
	case "K", "shift+up":
		cursor -= 5
	case "J", "shift+down":
		cursor += 5
	case "pgup", "ctrl+u":
		cursor -= page
	case "pgdown", "ctrl+d":
		cursor += page
	case "g", "home":
		cursor = 0
	case "G", "end":
		cursor = n - 1
	}
	return clamp(cursor, 0, n-1)
}

func isNavKey(key string) bool {
	switch key {
	case "k", "up", "j", "down", "K", "shift+up", "J", "shift+down",
		"pgup", "ctrl+u", "pgdown", "ctrl+d", "g", "home", "G", "end":
		return true
	}
	return false
}

// window returns the first visible row so that cursor stays within a view
// of height rows.
func window(cursor, n, height int) int {
	if height <= 0 || n <= height {
		return 0
	}
	start := cursor - height/2
	return clamp(start, 0, n-height)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
