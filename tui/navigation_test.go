package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveCursor(t *testing.T) {
	assert.Equal(t, 1, moveCursor("j", 0, 3, 10))
	assert.Equal(t, 2, moveCursor("down", 2, 3, 10))
	assert.Equal(t, 0, moveCursor("k", 0, 3, 10))
	assert.Equal(t, 5, moveCursor("J", 0, 20, 10))
	assert.Equal(t, 19, moveCursor("G", 0, 20, 10))
	assert.Equal(t, 0, moveCursor("g", 7, 20, 10))
	assert.Equal(t, 17, moveCursor("pgdown", 7, 20, 10))
	assert.Equal(t, 0, moveCursor("j", 0, 0, 10))
}

func TestWindow(t *testing.T) {
	assert.Equal(t, 0, window(3, 5, 10))
	assert.Equal(t, 0, window(2, 50, 10))
	assert.Equal(t, 15, window(20, 50, 10))
	assert.Equal(t, 40, window(49, 50, 10))
}
