package notestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribe/ink"
	"scribe/notetree"
)

func setup(t *testing.T) (*notetree.Repository, *Store, notetree.Info) {
	t.Helper()
	repo, err := notetree.Open(filepath.Join(t.TempDir(), "fs"), notetree.Options{})
	require.NoError(t, err)
	note, err := repo.CreateNote(notetree.RootID, "Sketch")
	require.NoError(t, err)
	return repo, New(repo, zerolog.Nop()), note
}

func sample() []ink.Stroke {
	return []ink.Stroke{
		{Points: []ink.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, Color: ink.Blue, Width: 6},
		{Points: []ink.Point{{X: 9, Y: 9}}, Color: ink.Red, Width: 4},
	}
}

func TestStrokesRoundTrip(t *testing.T) {
	_, store, note := setup(t)

	strokes, err := store.LoadStrokes(note.ID)
	require.NoError(t, err)
	assert.Empty(t, strokes)

	require.NoError(t, store.SaveStrokes(note.ID, sample()))
	assert.FileExists(t, filepath.Join(note.Dir, ink.FileName))

	got, err := store.LoadStrokes(note.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, sample()[0].Equal(got[0]))
	assert.True(t, sample()[1].Equal(got[1]))
}

func TestLoadStrokesSkipsBadLines(t *testing.T) {
	_, store, note := setup(t)
	data := "6|-16776961|1,2;3,4\nnot a stroke\n"
	require.NoError(t, os.WriteFile(filepath.Join(note.Dir, ink.FileName), []byte(data), 0644))

	got, err := store.LoadStrokes(note.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestContentRoundTrip(t *testing.T) {
	_, store, note := setup(t)

	text, err := store.LoadContent(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "", text)

	require.NoError(t, store.SaveContent(note.ID, "# Sketch\n\nhello"))
	text, err = store.LoadContent(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Sketch\n\nhello", text)

	path, err := store.ContentPath(note.ID)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(note.Dir, ContentFile), path)
}

func TestRejectsFolders(t *testing.T) {
	repo, store, _ := setup(t)
	folder, err := repo.CreateFolder(notetree.RootID, "F")
	require.NoError(t, err)

	_, err = store.LoadStrokes(folder.ID)
	assert.ErrorIs(t, err, ErrNotNote)
	err = store.SaveContent("missing", "x")
	assert.ErrorIs(t, err, notetree.ErrNotFound)
}

func TestFilesFollowRename(t *testing.T) {
	repo, store, note := setup(t)
	require.NoError(t, store.SaveStrokes(note.ID, sample()))

	_, err := repo.Rename(note.ID, "Renamed")
	require.NoError(t, err)

	got, err := store.LoadStrokes(note.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
