// Package notestore reads and writes the files that live inside a note's
// directory: the stroke list and the text body.
package notestore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"scribe/ink"
	"scribe/notetree"
)

const ContentFile = "content.md"

var ErrNotNote = errors.New("node is not a note")

// Tree resolves note ids to their directories.
type Tree interface {
	Get(id string) (notetree.Info, error)
}

type Store struct {
	tree Tree
	log  zerolog.Logger
}

func New(tree Tree, log zerolog.Logger) *Store {
	return &Store{tree: tree, log: log}
}

func (s *Store) noteDir(noteID string) (string, error) {
	info, err := s.tree.Get(noteID)
	if err != nil {
		return "", err
	}
	if info.Kind != notetree.KindNote {
		return "", fmt.Errorf("%w: %s", ErrNotNote, noteID)
	}
	return info.Dir, nil
}

// LoadStrokes returns the note's strokes. A note that was never drawn on
// has none. Malformed lines are dropped.
func (s *Store) LoadStrokes(noteID string) ([]ink.Stroke, error) {
	dir, err := s.noteDir(noteID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, ink.FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	strokes, rep, err := ink.DecodeStrokes(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read strokes: %w", err)
	}
	if rep.Skipped > 0 {
		s.log.Warn().Str("note", noteID).Int("skipped", rep.Skipped).Int("lines", rep.Lines).Msg("dropped malformed stroke lines")
	}
	return strokes, nil
}

func (s *Store) SaveStrokes(noteID string, strokes []ink.Stroke) error {
	dir, err := s.noteDir(noteID)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := ink.EncodeStrokes(&buf, strokes); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, ink.FileName), buf.Bytes())
}

func (s *Store) LoadContent(noteID string) (string, error) {
	dir, err := s.noteDir(noteID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, ContentFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func (s *Store) SaveContent(noteID, content string) error {
	dir, err := s.noteDir(noteID)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, ContentFile), []byte(content))
}

// ContentPath returns where the note body is stored, for handing to an
// external editor.
func (s *Store) ContentPath(noteID string) (string, error) {
	dir, err := s.noteDir(noteID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ContentFile), nil
}

func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
