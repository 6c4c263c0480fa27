package notetree

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "fs"), Options{})
	require.NoError(t, err)
	return repo
}

func readSidecarFile(t *testing.T, dir string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, SidecarName))
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func names(infos []Info) []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.Name
	}
	return out
}

func TestCreateWritesSidecar(t *testing.T) {
	repo := openTemp(t)

	math, err := repo.CreateFolder(RootID, "Math")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo.Dir(), "Math"), math.Dir)
	assert.Equal(t, RootID, math.ParentID)

	sc := readSidecarFile(t, math.Dir)
	assert.Equal(t, math.ID, sc["id"])
	assert.Equal(t, "folder", sc["type"])
	assert.Equal(t, "Math", sc["name"])

	note, err := repo.CreateNote(math.ID, "Algebra")
	require.NoError(t, err)
	assert.Equal(t, "note", readSidecarFile(t, note.Dir)["type"])
	assert.Equal(t, filepath.Join(math.Dir, "Algebra"), note.Dir)
}

func TestCreateUnderMissingParent(t *testing.T) {
	repo := openTemp(t)

	_, err := repo.CreateNote("nope", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	note, err := repo.CreateNote(RootID, "n")
	require.NoError(t, err)
	_, err = repo.CreateFolder(note.ID, "child")
	assert.ErrorIs(t, err, ErrNotFolder)
	assert.Equal(t, 1, repo.Len())
}

func TestCreateUniquifiesNames(t *testing.T) {
	repo := openTemp(t)

	a, _ := repo.CreateNote(RootID, "Note")
	b, _ := repo.CreateNote(RootID, "note")
	c, _ := repo.CreateFolder(RootID, "Note")

	assert.Equal(t, "Note", a.Name)
	assert.Equal(t, "note (1)", b.Name)
	assert.Equal(t, "Note (2)", c.Name)
}

func TestCreateAvoidsForeignDirectories(t *testing.T) {
	repo := openTemp(t)
	require.NoError(t, os.Mkdir(filepath.Join(repo.Dir(), "assets"), 0755))

	info, err := repo.CreateFolder(RootID, "assets")
	require.NoError(t, err)
	assert.Equal(t, "assets (1)", info.Name)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "a_b", SanitizeName(" a/b "))
	assert.Equal(t, "Untitled", SanitizeName("  "))
	assert.Equal(t, "Untitled", SanitizeName(".."))
	assert.Equal(t, "x_y", SanitizeName(`x\y`))
}

func TestChildrenSortedCaseInsensitive(t *testing.T) {
	repo := openTemp(t)
	for _, n := range []string{"beta", "Alpha", "gamma", "Delta"} {
		_, err := repo.CreateNote(RootID, n)
		require.NoError(t, err)
	}

	children, err := repo.Children(RootID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "beta", "Delta", "gamma"}, names(children))
}

func TestRenameScenario(t *testing.T) {
	repo := openTemp(t)
	math, err := repo.CreateFolder(RootID, "Math")
	require.NoError(t, err)
	algebra, err := repo.CreateNote(math.ID, "Algebra")
	require.NoError(t, err)

	renamed, err := repo.Rename(algebra.ID, "Algebra Notes")
	require.NoError(t, err)

	assert.Equal(t, algebra.ID, renamed.ID)
	assert.Equal(t, "Algebra Notes", renamed.Name)
	assert.Equal(t, math.ID, renamed.ParentID)
	assert.Equal(t, filepath.Join(math.Dir, "Algebra Notes"), renamed.Dir)
	assert.NoDirExists(t, algebra.Dir)
	assert.DirExists(t, renamed.Dir)
	assert.Equal(t, "Algebra Notes", readSidecarFile(t, renamed.Dir)["name"])
	assert.Equal(t, algebra.ID, readSidecarFile(t, renamed.Dir)["id"])

	children, err := repo.Children(math.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, algebra.ID, children[0].ID)
}

func TestRenameCollisionUniquifies(t *testing.T) {
	repo := openTemp(t)
	_, err := repo.CreateNote(RootID, "Note")
	require.NoError(t, err)
	other, err := repo.CreateNote(RootID, "Other")
	require.NoError(t, err)

	renamed, err := repo.Rename(other.ID, "Note")
	require.NoError(t, err)
	assert.Equal(t, "Note (1)", renamed.Name)
	assert.DirExists(t, filepath.Join(repo.Dir(), "Note"))
	assert.DirExists(t, filepath.Join(repo.Dir(), "Note (1)"))
}

func TestRenameCaseOnly(t *testing.T) {
	repo := openTemp(t)
	n, err := repo.CreateNote(RootID, "note")
	require.NoError(t, err)

	renamed, err := repo.Rename(n.ID, "Note")
	require.NoError(t, err)
	assert.Equal(t, "Note", renamed.Name)
}

func TestRenameSameNameIsNoop(t *testing.T) {
	repo := openTemp(t)
	n, _ := repo.CreateNote(RootID, "Same")
	events := 0
	repo.Events().Subscribe(func(Event) { events++ })

	info, err := repo.Rename(n.ID, "Same")
	require.NoError(t, err)
	assert.Equal(t, n, info)
	assert.Equal(t, 0, events)
}

func TestRenameFailureLeavesState(t *testing.T) {
	repo := openTemp(t)
	n, err := repo.CreateNote(RootID, "Keep")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(n.Dir))

	_, err = repo.Rename(n.ID, "Changed")
	assert.Error(t, err)

	info, err := repo.Get(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep", info.Name)
}

func TestRenameRoot(t *testing.T) {
	repo := openTemp(t)
	_, err := repo.Rename(RootID, "x")
	assert.ErrorIs(t, err, ErrRoot)
}

func TestMove(t *testing.T) {
	repo := openTemp(t)
	a, _ := repo.CreateFolder(RootID, "A")
	b, _ := repo.CreateFolder(RootID, "B")
	n, _ := repo.CreateNote(a.ID, "N")

	var got []Event
	repo.Events().Subscribe(func(ev Event) { got = append(got, ev) })

	moved, err := repo.Move(n.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, moved.ID)
	assert.Equal(t, b.ID, moved.ParentID)
	assert.Equal(t, filepath.Join(b.Dir, "N"), moved.Dir)
	assert.NoDirExists(t, n.Dir)

	ac, _ := repo.Children(a.ID)
	bc, _ := repo.Children(b.ID)
	assert.Empty(t, ac)
	assert.Equal(t, []string{"N"}, names(bc))

	require.Len(t, got, 1)
	assert.Equal(t, EventMoved, got[0].Type)
	assert.Equal(t, a.ID, got[0].OldParentID)
}

func TestMoveCollisionUniquifies(t *testing.T) {
	repo := openTemp(t)
	a, _ := repo.CreateFolder(RootID, "A")
	_, _ = repo.CreateNote(RootID, "N")
	n, _ := repo.CreateNote(a.ID, "N")

	moved, err := repo.Move(n.ID, RootID)
	require.NoError(t, err)
	assert.Equal(t, "N (1)", moved.Name)
	assert.Equal(t, "N (1)", readSidecarFile(t, moved.Dir)["name"])
}

func TestMoveRejections(t *testing.T) {
	repo := openTemp(t)
	a, _ := repo.CreateFolder(RootID, "A")
	b, _ := repo.CreateFolder(a.ID, "B")
	c, _ := repo.CreateFolder(b.ID, "C")
	n, _ := repo.CreateNote(RootID, "N")

	_, err := repo.Move(RootID, a.ID)
	assert.ErrorIs(t, err, ErrRoot)
	_, err = repo.Move(a.ID, a.ID)
	assert.ErrorIs(t, err, ErrCycle)
	_, err = repo.Move(a.ID, c.ID)
	assert.ErrorIs(t, err, ErrCycle)
	_, err = repo.Move(b.ID, n.ID)
	assert.ErrorIs(t, err, ErrNotFolder)
	_, err = repo.Move(b.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	info, _ := repo.Get(c.ID)
	assert.Equal(t, filepath.Join(repo.Dir(), "A", "B", "C"), info.Dir)
}

func TestMoveIntoDescendantProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dir, err := os.MkdirTemp("", "notetree-rapid-")
		require.NoError(t, err)
		defer os.RemoveAll(dir)
		repo, err := Open(dir, Options{})
		require.NoError(t, err)

		depth := rapid.IntRange(1, 8).Draw(t, "depth")
		chain := []Info{}
		parent := RootID
		for i := 0; i < depth; i++ {
			f, err := repo.CreateFolder(parent, "f")
			require.NoError(t, err)
			chain = append(chain, f)
			parent = f.ID
		}

		src := rapid.IntRange(0, depth-1).Draw(t, "src")
		dst := rapid.IntRange(src, depth-1).Draw(t, "dst")
		_, err = repo.Move(chain[src].ID, chain[dst].ID)
		require.ErrorIs(t, err, ErrCycle)
	})
}

func TestMoveToSameParentIsNoop(t *testing.T) {
	repo := openTemp(t)
	n, _ := repo.CreateNote(RootID, "N")

	info, err := repo.Move(n.ID, RootID)
	require.NoError(t, err)
	assert.Equal(t, n.Dir, info.Dir)
}

func TestDelete(t *testing.T) {
	repo := openTemp(t)
	a, _ := repo.CreateFolder(RootID, "A")
	b, _ := repo.CreateFolder(a.ID, "B")
	n, _ := repo.CreateNote(b.ID, "N")

	require.NoError(t, repo.Delete(a.ID))
	assert.NoDirExists(t, a.Dir)
	for _, id := range []string{a.ID, b.ID, n.ID} {
		_, err := repo.Get(id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 0, repo.Len())

	assert.ErrorIs(t, repo.Delete(RootID), ErrRoot)
	assert.ErrorIs(t, repo.Delete(a.ID), ErrNotFound)
}

func TestReload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fs")
	repo, err := Open(dir, Options{})
	require.NoError(t, err)
	math, _ := repo.CreateFolder(RootID, "Math")
	alg, _ := repo.CreateNote(math.ID, "algebra")
	geo, _ := repo.CreateNote(math.ID, "Geometry")
	_, _ = repo.CreateFolder(RootID, "art")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "stray", "deep"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken", SidecarName), []byte("{"), 0644))

	again, err := Open(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, again.Len())

	top, _ := again.Children(RootID)
	assert.Equal(t, []string{"art", "Math"}, names(top))
	kids, _ := again.Children(math.ID)
	require.Len(t, kids, 2)
	assert.Equal(t, alg.ID, kids[0].ID)
	assert.Equal(t, geo.ID, kids[1].ID)
	assert.Equal(t, KindNote, kids[0].Kind)
}

func TestReloadLogsSkippedDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fs")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "stray"), 0755))

	var buf bytes.Buffer
	repo, err := Open(dir, Options{Logger: zerolog.New(&buf).Level(zerolog.DebugLevel)})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.Len())
	assert.Contains(t, buf.String(), "skipped directory without sidecar")
	assert.Contains(t, buf.String(), filepath.Join(dir, "stray"))
}

func TestReloadReassignsDuplicateIDs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fs")
	repo, err := Open(dir, Options{})
	require.NoError(t, err)
	n, _ := repo.CreateNote(RootID, "a")

	copyDir := filepath.Join(dir, "b")
	require.NoError(t, os.Mkdir(copyDir, 0755))
	data, err := os.ReadFile(filepath.Join(n.Dir, SidecarName))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(copyDir, SidecarName), data, 0644))

	require.NoError(t, repo.Reload())
	assert.Equal(t, 2, repo.Len())
	kids, _ := repo.Children(RootID)
	require.Len(t, kids, 2)
	assert.NotEqual(t, kids[0].ID, kids[1].ID)
	assert.Equal(t, kids[1].ID, readSidecarFile(t, copyDir)["id"])
}

func TestReloadKeepsSidecarNameWhenDirDiffers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fs")
	repo, err := Open(dir, Options{})
	require.NoError(t, err)
	n, _ := repo.CreateNote(RootID, "Old")
	require.NoError(t, os.Rename(n.Dir, filepath.Join(dir, "New")))

	require.NoError(t, repo.Reload())
	info, err := repo.Get(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old", info.Name)
	assert.Equal(t, filepath.Join(dir, "New"), info.Dir)
}

func TestResolveAndFind(t *testing.T) {
	repo := openTemp(t)
	math, _ := repo.CreateFolder(RootID, "Math")
	alg, _ := repo.CreateNote(math.ID, "Algebra")

	info, err := repo.Resolve("math/algebra")
	require.NoError(t, err)
	assert.Equal(t, alg.ID, info.ID)

	root, err := repo.Resolve("/")
	require.NoError(t, err)
	assert.Equal(t, RootID, root.ID)

	_, err = repo.Resolve("Math/Algebra/x")
	assert.ErrorIs(t, err, ErrNotFolder)
	_, err = repo.Resolve("Physics")
	assert.ErrorIs(t, err, ErrNotFound)

	found := repo.Find("alg")
	require.Len(t, found, 1)
	assert.Equal(t, alg.ID, found[0].ID)
}

func TestWalkSkipsChildren(t *testing.T) {
	repo := openTemp(t)
	a, _ := repo.CreateFolder(RootID, "A")
	_, _ = repo.CreateNote(a.ID, "inner")
	_, _ = repo.CreateNote(RootID, "B")

	var seen []string
	repo.Walk(func(info Info, depth int) bool {
		seen = append(seen, info.Name)
		return info.Name != "A"
	})
	assert.Equal(t, []string{"A", "B"}, seen)
}

func TestSnapshotIsDetached(t *testing.T) {
	repo := openTemp(t)
	a, _ := repo.CreateFolder(RootID, "A")
	_, _ = repo.CreateNote(a.ID, "n")

	snap := repo.Snapshot()
	require.NoError(t, repo.Delete(a.ID))

	require.Len(t, snap.Children(), 1)
	f, ok := snap.Children()[0].(*Folder)
	require.True(t, ok)
	assert.Equal(t, "A", f.Name())
	assert.Len(t, f.Children(), 1)
	assert.Same(t, f, f.Children()[0].Parent())
}

func TestAncestors(t *testing.T) {
	repo := openTemp(t)
	a, _ := repo.CreateFolder(RootID, "A")
	b, _ := repo.CreateFolder(a.ID, "B")
	n, _ := repo.CreateNote(b.ID, "N")

	anc, err := repo.Ancestors(n.ID)
	require.NoError(t, err)
	require.Len(t, anc, 3)
	assert.Equal(t, []string{RootID, a.ID, b.ID}, []string{anc[0].ID, anc[1].ID, anc[2].ID})
}
