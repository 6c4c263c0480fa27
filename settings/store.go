package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"scribe/ink"
)

const FileName = "prefs.yaml"

// Prefs is the on-disk preferences document. Presets keeps the compact
// "<argb>:<width>;..." form.
type Prefs struct {
	PenWidth    float64 `yaml:"pen_width"`
	EraserWidth float64 `yaml:"eraser_width"`
	Presets     string  `yaml:"presets"`
}

func Defaults() Prefs {
	return Prefs{
		PenWidth:    6,
		EraserWidth: 24,
		Presets: FormatPresets([]Preset{
			{Color: ink.Blue, Width: 6},
			{Color: ink.Red, Width: 4},
			{Color: ink.Black, Width: 2},
		}),
	}
}

func (p Prefs) PresetList() []Preset {
	return ParsePresets(p.Presets)
}

type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the saved preferences, falling back to the defaults for a
// missing file or missing keys.
func (s *Store) Load() (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Prefs, error) {
	prefs := Defaults()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return prefs, nil
		}
		return prefs, err
	}
	var saved struct {
		PenWidth    float64 `yaml:"pen_width"`
		EraserWidth float64 `yaml:"eraser_width"`
		Presets     *string `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return prefs, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if saved.PenWidth > 0 {
		prefs.PenWidth = saved.PenWidth
	}
	if saved.EraserWidth > 0 {
		prefs.EraserWidth = saved.EraserWidth
	}
	if saved.Presets != nil {
		prefs.Presets = *saved.Presets
	}
	return prefs, nil
}

func (s *Store) Save(prefs Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(prefs)
}

func (s *Store) save(prefs Prefs) error {
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

func (s *Store) AddPreset(p Preset) ([]Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, err := s.load()
	if err != nil {
		return nil, err
	}
	list := append(prefs.PresetList(), p)
	prefs.Presets = FormatPresets(list)
	return list, s.save(prefs)
}

func (s *Store) RemovePreset(index int) ([]Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, err := s.load()
	if err != nil {
		return nil, err
	}
	list := prefs.PresetList()
	if index < 0 || index >= len(list) {
		return list, fmt.Errorf("preset %d out of range", index)
	}
	list = append(list[:index], list[index+1:]...)
	prefs.Presets = FormatPresets(list)
	return list, s.save(prefs)
}
