package flow

import (
	"fmt"
	"strings"
)

// SaveWorkspace replaces the workspace with the same ID.
func (s Snapshot) SaveWorkspace(ws Workspace) (Snapshot, error) {
	for i, w := range s.Workspaces {
		if w.ID != ws.ID {
			continue
		}
		ws.Links = cloneSlice(ws.Links)
		ws.StartupChecklist = cloneSlice(ws.StartupChecklist)
		list := cloneSlice(s.Workspaces)
		list[i] = ws
		s.Workspaces = list
		return s, nil
	}
	return s, fmt.Errorf("save workspace %q: %w", ws.ID, ErrNotFound)
}

// AddLink returns a copy of w with a new link. Both label and url are
// required.
func (w Workspace) AddLink(label, url string) (Workspace, error) {
	label, url = strings.TrimSpace(label), strings.TrimSpace(url)
	if label == "" || url == "" {
		return w, fmt.Errorf("add link: %w: label and url are required", ErrInvalid)
	}
	links := make([]WorkspaceLink, 0, len(w.Links)+1)
	links = append(links, w.Links...)
	w.Links = append(links, WorkspaceLink{ID: NewID("link"), Label: label, URL: url})
	return w, nil
}

func (w Workspace) RemoveLink(id string) Workspace {
	links := make([]WorkspaceLink, 0, len(w.Links))
	for _, l := range w.Links {
		if l.ID != id {
			links = append(links, l)
		}
	}
	w.Links = links
	return w
}

func (w Workspace) AddChecklistItem(item string) (Workspace, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return w, fmt.Errorf("add checklist item: %w: empty item", ErrInvalid)
	}
	list := make([]string, 0, len(w.StartupChecklist)+1)
	list = append(list, w.StartupChecklist...)
	w.StartupChecklist = append(list, item)
	return w, nil
}

func (w Workspace) RemoveChecklistItem(idx int) Workspace {
	if idx < 0 || idx >= len(w.StartupChecklist) {
		return w
	}
	list := make([]string, 0, len(w.StartupChecklist)-1)
	list = append(list, w.StartupChecklist[:idx]...)
	w.StartupChecklist = append(list, w.StartupChecklist[idx+1:]...)
	return w
}
