package notetree

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SidecarName is the metadata file inside every node directory.
const SidecarName = ".node.json"

type sidecar struct {
	ID   string `json:"id"`
	Type Kind   `json:"type"`
	Name string `json:"name"`
}

func readSidecar(dir string) (sidecar, error) {
	data, err := os.ReadFile(filepath.Join(dir, SidecarName))
	if err != nil {
		return sidecar{}, err
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return sidecar{}, fmt.Errorf("failed to parse sidecar: %w", err)
	}
	if sc.ID == "" {
		return sidecar{}, fmt.Errorf("sidecar in %s has no id", dir)
	}
	if !sc.Type.Valid() {
		return sidecar{}, fmt.Errorf("sidecar in %s has unknown type %q", dir, sc.Type)
	}
	return sc, nil
}

// writeSidecar replaces the sidecar through a temporary file so a reader
// never sees a half-written document.
func writeSidecar(dir string, sc sidecar) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}
	path := filepath.Join(dir, SidecarName)
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

func sidecarOf(n Node) sidecar {
	return sidecar{ID: n.ID(), Type: n.Kind(), Name: n.Name()}
}
