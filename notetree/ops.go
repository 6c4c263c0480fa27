package notetree

import (
	"fmt"
	"os"
	"path/filepath"
)

func (r *Repository) CreateFolder(parentID, name string) (Info, error) {
	return r.create(parentID, name, KindFolder)
}

func (r *Repository) CreateNote(parentID, name string) (Info, error) {
	return r.create(parentID, name, KindNote)
}

func (r *Repository) create(parentID, name string, kind Kind) (Info, error) {
	r.mu.Lock()
	info, err := r.createLocked(parentID, name, kind)
	r.mu.Unlock()
	if err != nil {
		return Info{}, err
	}

	r.log.Debug().Str("id", info.ID).Str("type", string(kind)).Str("name", info.Name).Msg("node created")
	r.events.Publish(Event{Type: EventCreated, Node: info})
	return info, nil
}

func (r *Repository) createLocked(parentID, name string, kind Kind) (Info, error) {
	parent, err := r.folder(parentID)
	if err != nil {
		return Info{}, err
	}

	parentDir := r.dirOf(parent)
	name = uniqueName(parent, parentDir, SanitizeName(name), nil)
	dir := filepath.Join(parentDir, name)
	if err := os.Mkdir(dir, 0755); err != nil {
		return Info{}, fmt.Errorf("failed to create %s: %w", kind, err)
	}

	b := base{id: r.freshID(r.index), name: name, dirName: name, parent: parent}
	var n Node
	if kind == KindFolder {
		n = &Folder{base: b}
	} else {
		n = &Note{base: b}
	}

	if err := writeSidecar(dir, sidecarOf(n)); err != nil {
		os.RemoveAll(dir)
		return Info{}, fmt.Errorf("failed to write sidecar: %w", err)
	}

	parent.children = append(parent.children, n)
	sortChildren(parent)
	r.index[n.ID()] = n
	return r.info(n), nil
}

// Rename gives id a new display name, uniquified among its siblings, and
// renames the backing directory to match. If the directory rename fails
// nothing changes.
func (r *Repository) Rename(id, newName string) (Info, error) {
	r.mu.Lock()
	info, changed, err := r.renameLocked(id, newName)
	r.mu.Unlock()
	if err != nil || !changed {
		return info, err
	}

	r.log.Debug().Str("id", id).Str("name", info.Name).Msg("node renamed")
	r.events.Publish(Event{Type: EventRenamed, Node: info})
	return info, nil
}

func (r *Repository) renameLocked(id, newName string) (Info, bool, error) {
	n, err := r.lookup(id)
	if err != nil {
		return Info{}, false, err
	}
	parent := n.Parent()
	if parent == nil {
		return Info{}, false, ErrRoot
	}

	newName = SanitizeName(newName)
	b := n.node()
	if newName == b.name {
		return r.info(n), false, nil
	}

	parentDir := r.dirOf(parent)
	newName = uniqueName(parent, parentDir, newName, n)
	oldDir := filepath.Join(parentDir, b.dirName)
	newDir := filepath.Join(parentDir, newName)
	if oldDir != newDir {
		if err := os.Rename(oldDir, newDir); err != nil {
			return Info{}, false, fmt.Errorf("failed to rename %s: %w", b.name, err)
		}
	}

	b.name = newName
	b.dirName = newName
	r.syncSidecar(n)
	sortChildren(parent)
	return r.info(n), true, nil
}

// Move re-parents id under targetID. The root cannot move, the target must
// be a folder, and a folder cannot move into itself or its descendants.
func (r *Repository) Move(id, targetID string) (Info, error) {
	r.mu.Lock()
	info, oldParent, err := r.moveLocked(id, targetID)
	r.mu.Unlock()
	if err != nil || oldParent == "" {
		return info, err
	}

	r.log.Debug().Str("id", id).Str("from", oldParent).Str("to", info.ParentID).Msg("node moved")
	r.events.Publish(Event{Type: EventMoved, Node: info, OldParentID: oldParent})
	return info, nil
}

func (r *Repository) moveLocked(id, targetID string) (Info, string, error) {
	n, err := r.lookup(id)
	if err != nil {
		return Info{}, "", err
	}
	oldParent := n.Parent()
	if oldParent == nil {
		return Info{}, "", ErrRoot
	}
	target, err := r.folder(targetID)
	if err != nil {
		return Info{}, "", err
	}
	if f, ok := n.(*Folder); ok && isAncestor(f, target) {
		return Info{}, "", ErrCycle
	}
	if target == oldParent {
		return r.info(n), "", nil
	}

	b := n.node()
	targetDir := r.dirOf(target)
	name := uniqueName(target, targetDir, b.name, nil)
	oldDir := r.dirOf(n)
	newDir := filepath.Join(targetDir, name)
	if err := os.Rename(oldDir, newDir); err != nil {
		return Info{}, "", fmt.Errorf("failed to move %s: %w", b.name, err)
	}

	unlink(oldParent, n)
	b.name = name
	b.dirName = name
	b.parent = target
	target.children = append(target.children, n)
	sortChildren(target)
	r.syncSidecar(n)
	return r.info(n), oldParent.ID(), nil
}

// Delete removes id, its directory tree and every index entry below it.
func (r *Repository) Delete(id string) error {
	r.mu.Lock()
	info, err := r.deleteLocked(id)
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.log.Debug().Str("id", id).Str("name", info.Name).Msg("node deleted")
	r.events.Publish(Event{Type: EventDeleted, Node: info})
	return nil
}

func (r *Repository) deleteLocked(id string) (Info, error) {
	n, err := r.lookup(id)
	if err != nil {
		return Info{}, err
	}
	parent := n.Parent()
	if parent == nil {
		return Info{}, ErrRoot
	}

	info := r.info(n)
	if err := os.RemoveAll(info.Dir); err != nil {
		return Info{}, fmt.Errorf("failed to delete %s: %w", n.Name(), err)
	}
	unlink(parent, n)
	r.unindex(n)
	return info, nil
}

func (r *Repository) unindex(n Node) {
	delete(r.index, n.ID())
	if f, ok := n.(*Folder); ok {
		for _, c := range f.children {
			r.unindex(c)
		}
	}
}

func unlink(parent *Folder, n Node) {
	for i, c := range parent.children {
		if c == n {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			return
		}
	}
}

// syncSidecar rewrites n's sidecar after its directory already moved. The
// two steps are not atomic; a failure here leaves the old name on disk
// until the next successful write.
func (r *Repository) syncSidecar(n Node) {
	if err := writeSidecar(r.dirOf(n), sidecarOf(n)); err != nil {
		r.log.Warn().Err(err).Str("id", n.ID()).Msg("failed to update sidecar")
	}
}
